package handlers

import (
	"rewear/internal/models"
	"rewear/internal/repositories"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for product listings.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	products := router.Group("/products")
	products.Get("/approved", h.HandleListApproved)
	products.Get("/unapproved", append(g.Only(models.RoleAdmin), h.HandleListPending)...)
	products.Get("/seller", append(g.Only(models.RoleSeller), h.HandleListOwn)...)
	products.Get("/:id", h.HandleGetProduct)

	seller := g.Only(models.RoleSeller)
	products.Post("/", append(seller, h.HandleCreateProduct)...)
	products.Put("/:id/review", append(g.Only(models.RoleAdmin), h.HandleReviewProduct)...)
	products.Put("/:id", append(seller, h.HandleUpdateProduct)...)
	products.Delete("/:id", append(seller, h.HandleDeleteProduct)...)
}

// HandleListApproved is the public catalogue with optional filters.
func (h *ProductHandler) HandleListApproved(c *fiber.Ctx) error {
	page, err := h.service.ListApproved(c.UserContext(), repositories.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page"),
		PageSize: c.QueryInt("page_size"),
	})
	if err != nil {
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

func (h *ProductHandler) HandleListPending(c *fiber.Ctx) error {
	page, err := h.service.ListPending(c.UserContext(), c.QueryInt("page"), c.QueryInt("page_size"))
	if err != nil {
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

func (h *ProductHandler) HandleListOwn(c *fiber.Ctx) error {
	page, err := h.service.ListBySeller(c.UserContext(), identity(c).UserID, c.QueryInt("page"), c.QueryInt("page_size"))
	if err != nil {
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct submits a new listing for review.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), identity(c).UserID, req)
	if err != nil {
		return fail(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct edits a listing and resubmits it for review.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), identity(c).UserID, c.Params("id"), req)
	if err != nil {
		return fail(c, "Could not update product", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), identity(c).UserID, c.Params("id")); err != nil {
		return fail(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleReviewProduct approves or rejects a pending listing.
func (h *ProductHandler) HandleReviewProduct(c *fiber.Ctx) error {
	var req services.ReviewDecision
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.ReviewProduct(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return fail(c, "Could not review product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product " + string(product.Status),
		"product": product,
	})
}
