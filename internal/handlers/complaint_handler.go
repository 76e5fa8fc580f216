package handlers

import (
	"net/url"

	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ComplaintHandler serves buyer complaints and the public contact form.
type ComplaintHandler struct {
	service  *services.ComplaintService
	validate *validator.Validate
}

func NewComplaintHandler(service *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service, validate: validator.New()}
}

func (h *ComplaintHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Post("/contact_us", g.strict(), h.HandleContact)

	complaints := router.Group("/complaints", g.Auth)
	complaints.Post("/", h.HandleCreate)
	complaints.Get("/", h.HandleListOwn)
	complaints.Get("/status/:status", h.HandleListByStatus)
	complaints.Get("/:id", h.HandleGet)
	complaints.Patch("/:id/close", append(g.Only(models.RoleAdmin), h.HandleClose)...)
}

// HandleContact stores a public inquiry. An email address is required.
func (h *ComplaintHandler) HandleContact(c *fiber.Ctx) error {
	var in services.ComplaintInput
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	complaint, err := h.service.Contact(c.UserContext(), in)
	if err != nil {
		return fail(c, "Could not send message", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Thanks, we will get back to you soon",
		"complaint": complaint,
	})
}

func (h *ComplaintHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.ComplaintInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	complaint, err := h.service.Create(c.UserContext(), identity(c), req)
	if err != nil {
		return fail(c, "Could not file complaint", err)
	}
	return c.Status(fiber.StatusCreated).JSON(complaint)
}

func (h *ComplaintHandler) HandleListOwn(c *fiber.Ctx) error {
	complaints, err := h.service.ListOwn(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, "Could not retrieve complaints", err)
	}
	return c.JSON(complaints)
}

func (h *ComplaintHandler) HandleListByStatus(c *fiber.Ctx) error {
	status, err := url.PathUnescape(c.Params("status"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid status",
			"error":   err.Error(),
		})
	}
	complaints, err := h.service.ListByStatus(c.UserContext(), identity(c), status)
	if err != nil {
		return fail(c, "Could not retrieve complaints", err)
	}
	return c.JSON(complaints)
}

func (h *ComplaintHandler) HandleGet(c *fiber.Ctx) error {
	complaint, err := h.service.Get(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return fail(c, "Could not retrieve complaint", err)
	}
	return c.JSON(complaint)
}

type closeRequest struct {
	Resolution string `json:"resolution" validate:"required,min=2"`
}

func (h *ComplaintHandler) HandleClose(c *fiber.Ctx) error {
	var req closeRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	complaint, err := h.service.Close(c.UserContext(), c.Params("id"), req.Resolution)
	if err != nil {
		return fail(c, "Could not close complaint", err)
	}
	return c.JSON(fiber.Map{
		"message":   "Complaint closed",
		"complaint": complaint,
	})
}
