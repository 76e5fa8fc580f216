package handlers

import (
	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the buyer's cart and its checkout.
type CartHandler struct {
	cart     *services.CartService
	checkout *services.CheckoutService
	validate *validator.Validate
}

func NewCartHandler(cart *services.CartService, checkout *services.CheckoutService) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout, validate: validator.New()}
}

// RegisterRoutes mounts /cart for buyers.
func (h *CartHandler) RegisterRoutes(router fiber.Router, g Guards) {
	cart := router.Group("/cart", g.Only(models.RoleBuyer)...)
	cart.Get("/", h.HandleGet)
	cart.Get("/total", h.HandleTotal)
	cart.Post("/", h.HandleAdd)
	cart.Put("/update", h.HandleUpdate)
	cart.Delete("/delete", h.HandleRemove)
	cart.Delete("/clear", h.HandleClear)
	cart.Put("/payment-status", h.HandleCheckout)
}

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	cart, err := h.cart.Get(c.UserContext(), identity(c).Email)
	if err != nil {
		return fail(c, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleTotal(c *fiber.Ctx) error {
	total, err := h.cart.Total(c.UserContext(), identity(c).Email)
	if err != nil {
		return fail(c, "Could not compute total", err)
	}
	return c.JSON(fiber.Map{"total": total})
}

func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	var req cartItemRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := h.cart.Add(c.UserContext(), identity(c).Email, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, "Could not add item to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleUpdate sets a line quantity. Quantities below one remove the line.
func (h *CartHandler) HandleUpdate(c *fiber.Ctx) error {
	var req cartItemRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.cart.SetQuantity(c.UserContext(), identity(c).Email, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, "Could not update cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		var req cartItemRequest
		if ok, err := bindJSON(c, h.validate, &req); !ok {
			return err
		}
		productID = req.ProductID
	}
	cart, err := h.cart.Remove(c.UserContext(), identity(c).Email, productID)
	if err != nil {
		return fail(c, "Could not remove item", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.cart.Clear(c.UserContext(), identity(c).Email); err != nil {
		return fail(c, "Could not clear cart", err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// HandleCheckout finalizes the cart into an order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	order, err := h.checkout.Checkout(c.UserContext(), identity(c).Email, req)
	if err != nil {
		return fail(c, "Checkout failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}
