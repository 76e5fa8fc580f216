package services

import (
	"context"
	"errors"
	"fmt"

	"rewear/internal/logger"
	"rewear/internal/models"
	"rewear/internal/repositories"

	"go.uber.org/zap"
)

// ProductInput is what a seller submits for a listing.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required"`
	Images      []string `json:"images" validate:"dive,required"`
}

// ReviewDecision is an admin moderation verdict.
type ReviewDecision struct {
	Status   models.ProductStatus `json:"status" validate:"required,oneof=approved rejected"`
	Comments string               `json:"comments" validate:"omitempty,max=500"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items    []models.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	users      repositories.UserRepository
	categories repositories.CategoryRepository
	notifier   *Notifier
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, users repositories.UserRepository, categories repositories.CategoryRepository, notifier *Notifier) *ProductService {
	return &ProductService{
		repo:       repo,
		users:      users,
		categories: categories,
		notifier:   notifier,
	}
}

// ListApproved is the public catalogue.
func (s *ProductService) ListApproved(ctx context.Context, filter repositories.ProductFilter) (*ProductPage, error) {
	filter.Status = models.ProductApproved
	filter.SellerID = ""
	return s.list(ctx, filter)
}

// ListPending returns listings waiting for moderation, oldest first.
func (s *ProductService) ListPending(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	return s.list(ctx, repositories.ProductFilter{Status: models.ProductPending, Page: page, PageSize: pageSize, Sort: "oldest"})
}

func (s *ProductService) ListBySeller(ctx context.Context, sellerID string, page, pageSize int) (*ProductPage, error) {
	return s.list(ctx, repositories.ProductFilter{SellerID: sellerID, Page: page, PageSize: pageSize})
}

func (s *ProductService) list(ctx context.Context, filter repositories.ProductFilter) (*ProductPage, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return &ProductPage{Items: products, Total: total, Page: page, PageSize: size}, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) checkCategory(ctx context.Context, name string) (string, error) {
	c, err := s.categories.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("unknown category %q: %w", name, ErrInvalidInput)
		}
		return "", err
	}
	return c.Name, nil
}

// CreateProduct stores a new listing as pending review.
func (s *ProductService) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (*models.Product, error) {
	seller, err := s.users.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	category, err := s.checkCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	sellerName := seller.BusinessName
	if sellerName == "" {
		sellerName = seller.FullName()
	}
	product := &models.Product{
		SellerID:    seller.ID,
		SellerName:  sellerName,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    category,
		Images:      in.Images,
		Status:      models.ProductPending,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("product submitted", zap.String("product_id", product.ID), zap.String("seller_id", sellerID))
	return product, nil
}

func (s *ProductService) ownedProduct(ctx context.Context, sellerID, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, fmt.Errorf("product %s belongs to another seller: %w", id, ErrForbidden)
	}
	if product.Status == models.ProductSold {
		return nil, fmt.Errorf("product %s is sold: %w", id, ErrProductUnavailable)
	}
	return product, nil
}

// UpdateProduct applies a seller edit. Any edit sends the listing back to review.
func (s *ProductService) UpdateProduct(ctx context.Context, sellerID, id string, in ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	category, err := s.checkCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Category = category
	if in.Images != nil {
		product.Images = in.Images
	}
	product.Status = models.ProductPending
	product.ReviewComments = ""
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, sellerID, id string) error {
	if _, err := s.ownedProduct(ctx, sellerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ReviewProduct records an admin decision and tells the seller.
func (s *ProductService) ReviewProduct(ctx context.Context, id string, decision ReviewDecision) (*models.Product, error) {
	if decision.Status != models.ProductApproved && decision.Status != models.ProductRejected {
		return nil, fmt.Errorf("review status must be approved or rejected: %w", ErrInvalidInput)
	}
	if decision.Status == models.ProductRejected && decision.Comments == "" {
		return nil, fmt.Errorf("comments are required when rejecting: %w", ErrInvalidInput)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status == models.ProductSold {
		return nil, fmt.Errorf("product %s is sold: %w", id, ErrProductUnavailable)
	}

	product.Status = decision.Status
	product.ReviewComments = decision.Comments
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("product reviewed", zap.String("product_id", id), zap.String("status", string(decision.Status)))
	s.notifier.ProductReviewed(ctx, product)
	return product, nil
}
