package handlers

import (
	"fmt"
	"strings"

	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	checkout *services.CheckoutService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, checkout *services.CheckoutService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		checkout: checkout,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	orderRoutes := router.Group("/orders", g.Auth)
	orderRoutes.Get("/", append(g.Only(models.RoleAdmin), h.HandleGetOrders)...)
	orderRoutes.Post("/", append(g.Only(models.RoleBuyer), h.HandleCreateOrder)...)
	orderRoutes.Get("/user", append(g.Only(models.RoleBuyer), h.HandleGetUserOrders)...)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists every order, optionally filtered by ?status=a,b.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var statuses []models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.OrderStatus(strings.TrimSpace(s))
			if !status.Valid() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": fmt.Sprintf("Unknown order status %q", s),
				})
			}
			statuses = append(statuses, status)
		}
	}
	orders, err := h.service.ListAll(c.UserContext(), statuses...)
	if err != nil {
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetUserOrders returns the caller's orders, newest first.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForBuyer(c.UserContext(), identity(c).Email)
	if err != nil {
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return fail(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCreateOrder checks out the caller's cart. Totals and ids are
// computed server side.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	createdOrder, err := h.checkout.Checkout(c.UserContext(), identity(c).Email, req)
	if err != nil {
		return fail(c, "Could not create order", err)
	}
	// Return the created order with its new ID and a 201 Created status
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus applies an explicit transition.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req statusRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.UpdateStatus(c.UserContext(), identity(c), orderID, req.Status)
	if err != nil {
		return fail(c, "Order update failed", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, order.Status),
		"order":   order,
	})
}
