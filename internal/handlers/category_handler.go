package handlers

import (
	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service, validate: validator.New()}
}

// RegisterRoutes mounts /categories. Listing is public, mutations are admin only.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, g Guards) {
	categories := router.Group("/categories")
	categories.Get("/", h.HandleList)
	admin := g.Only(models.RoleAdmin)
	categories.Post("/", append(admin, h.HandleCreate)...)
	categories.Put("/:id", append(admin, h.HandleRename)...)
	categories.Delete("/:id", append(admin, h.HandleDelete)...)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return fail(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req categoryRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	category, err := h.service.Create(c.UserContext(), req.Name)
	if err != nil {
		return fail(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleRename(c *fiber.Ctx) error {
	var req categoryRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	category, err := h.service.Rename(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return fail(c, "Could not update category", err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, "Could not delete category", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
