package services

import (
	"context"
	"fmt"

	"rewear/internal/models"
	"rewear/internal/repositories"
)

// ReviewInput is a buyer's rating of an order.
type ReviewInput struct {
	OrderID    string `json:"order_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text" validate:"max=2000"`
}

// ReviewService lets buyers rate completed orders, once each.
type ReviewService struct {
	reviews repositories.ReviewRepository
	orders  repositories.OrderRepository
}

func NewReviewService(reviews repositories.ReviewRepository, orders repositories.OrderRepository) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders}
}

func (s *ReviewService) Create(ctx context.Context, who Identity, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidInput)
	}
	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerEmail != who.Email {
		return nil, fmt.Errorf("order %s: %w", in.OrderID, ErrForbidden)
	}
	if order.Status != models.OrderDelivered && order.Status != models.OrderReturned {
		return nil, fmt.Errorf("order %s is %s, reviews open after delivery: %w", order.ID, order.Status, ErrInvalidInput)
	}

	review := &models.Review{OrderID: order.ID, UserID: who.UserID, Rating: in.Rating, ReviewText: in.ReviewText}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Exists reports whether the caller already reviewed the order. For admins
// it reports whether anyone did.
func (s *ReviewService) Exists(ctx context.Context, who Identity, orderID string) (bool, error) {
	if who.IsAdmin() {
		return s.reviews.ExistsForOrder(ctx, orderID)
	}
	_, err := s.reviews.Find(ctx, orderID, who.UserID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *ReviewService) Get(ctx context.Context, who Identity, orderID string) (*models.Review, error) {
	return s.reviews.Find(ctx, orderID, who.UserID)
}
