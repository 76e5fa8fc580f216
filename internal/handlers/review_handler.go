package handlers

import (
	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service, validate: validator.New()}
}

func (h *ReviewHandler) RegisterRoutes(router fiber.Router, g Guards) {
	reviews := router.Group("/reviews", g.Auth)
	reviews.Post("/", append(g.Only(models.RoleBuyer), h.HandleCreate)...)
	reviews.Get("/check", h.HandleCheck)
	reviews.Get("/", h.HandleGet)
}

func (h *ReviewHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.ReviewInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	review, err := h.service.Create(c.UserContext(), identity(c), req)
	if err != nil {
		return fail(c, "Could not save review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) HandleCheck(c *fiber.Ctx) error {
	orderID := c.Query("order_id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "order_id is required"})
	}
	exists, err := h.service.Exists(c.UserContext(), identity(c), orderID)
	if err != nil {
		return fail(c, "Could not check review", err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

func (h *ReviewHandler) HandleGet(c *fiber.Ctx) error {
	orderID := c.Query("order_id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "order_id is required"})
	}
	review, err := h.service.Get(c.UserContext(), identity(c), orderID)
	if err != nil {
		return fail(c, "Could not retrieve review", err)
	}
	return c.JSON(review)
}
