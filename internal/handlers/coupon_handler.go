package handlers

import (
	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type CouponHandler struct {
	service  *services.CouponService
	validate *validator.Validate
}

func NewCouponHandler(service *services.CouponService) *CouponHandler {
	return &CouponHandler{service: service, validate: validator.New()}
}

func (h *CouponHandler) RegisterRoutes(router fiber.Router, g Guards) {
	coupons := router.Group("/coupons")
	seller := g.Only(models.RoleSeller)
	coupons.Post("/", append(seller, h.HandleCreate)...)
	coupons.Get("/seller", append(seller, h.HandleListOwn)...)
	coupons.Get("/validate/:code", append(g.Only(models.RoleBuyer), h.HandleValidate)...)
	coupons.Delete("/:code", append(seller, h.HandleDeactivate)...)
}

func (h *CouponHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CouponInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	coupon, err := h.service.Create(c.UserContext(), identity(c).UserID, req)
	if err != nil {
		return fail(c, "Could not create coupon", err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func (h *CouponHandler) HandleListOwn(c *fiber.Ctx) error {
	coupons, err := h.service.ListBySeller(c.UserContext(), identity(c).UserID)
	if err != nil {
		return fail(c, "Could not retrieve coupons", err)
	}
	return c.JSON(coupons)
}

// HandleValidate reports whether a code can be redeemed right now.
func (h *CouponHandler) HandleValidate(c *fiber.Ctx) error {
	coupon, err := h.service.Validate(c.UserContext(), c.Params("code"))
	if err != nil {
		return fail(c, "Coupon is not valid", err)
	}
	return c.JSON(fiber.Map{
		"message":             "Coupon is valid",
		"code":                coupon.Code,
		"discount_percentage": coupon.DiscountPercentage,
		"seller_name":         coupon.SellerName,
	})
}

func (h *CouponHandler) HandleDeactivate(c *fiber.Ctx) error {
	coupon, err := h.service.Deactivate(c.UserContext(), identity(c).UserID, c.Params("code"))
	if err != nil {
		return fail(c, "Could not deactivate coupon", err)
	}
	return c.JSON(fiber.Map{
		"message": "Coupon deactivated",
		"coupon":  coupon,
	})
}
