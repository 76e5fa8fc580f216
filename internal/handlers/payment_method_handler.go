package handlers

import (
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type PaymentMethodHandler struct {
	service  *services.PaymentMethodService
	validate *validator.Validate
}

func NewPaymentMethodHandler(service *services.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: service, validate: validator.New()}
}

// RegisterRoutes mounts /user/payment-methods for any signed-in user.
func (h *PaymentMethodHandler) RegisterRoutes(router fiber.Router, g Guards) {
	methods := router.Group("/user/payment-methods", g.Auth)
	methods.Get("/", h.HandleList)
	methods.Post("/", h.HandleCreate)
	methods.Put("/:id", h.HandleUpdate)
	methods.Delete("/:id", h.HandleDelete)
}

func (h *PaymentMethodHandler) HandleList(c *fiber.Ctx) error {
	methods, err := h.service.List(c.UserContext(), identity(c).Email)
	if err != nil {
		return fail(c, "Could not retrieve payment methods", err)
	}
	return c.JSON(methods)
}

func (h *PaymentMethodHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.PaymentMethodInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	method, err := h.service.Create(c.UserContext(), identity(c).Email, req)
	if err != nil {
		return fail(c, "Could not save payment method", err)
	}
	return c.Status(fiber.StatusCreated).JSON(method)
}

func (h *PaymentMethodHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.PaymentMethodInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	method, err := h.service.Update(c.UserContext(), identity(c).Email, c.Params("id"), req)
	if err != nil {
		return fail(c, "Could not update payment method", err)
	}
	return c.JSON(method)
}

func (h *PaymentMethodHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), identity(c).Email, c.Params("id")); err != nil {
		return fail(c, "Could not delete payment method", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
