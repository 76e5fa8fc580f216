package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rewear/internal/models"
	"rewear/internal/repositories"
)

// CouponInput is a seller's new coupon.
type CouponInput struct {
	Code               string     `json:"code" validate:"required,alphanum,min=3,max=32"`
	DiscountPercentage float64    `json:"discount_percentage" validate:"gt=0,lte=100"`
	ExpiryDate         *time.Time `json:"expiry_date"`
	MaxUses            int        `json:"max_uses" validate:"gte=0"`
}

// CouponService manages seller discount codes.
type CouponService struct {
	repo     repositories.CouponRepository
	users    repositories.UserRepository
	notifier *Notifier
	now      func() time.Time
}

func NewCouponService(repo repositories.CouponRepository, users repositories.UserRepository, notifier *Notifier) *CouponService {
	return &CouponService{repo: repo, users: users, notifier: notifier, now: time.Now}
}

func (s *CouponService) Create(ctx context.Context, sellerID string, in CouponInput) (*models.Coupon, error) {
	if in.DiscountPercentage <= 0 || in.DiscountPercentage > 100 {
		return nil, fmt.Errorf("discount must be in (0, 100]: %w", ErrInvalidInput)
	}
	if in.ExpiryDate != nil && !in.ExpiryDate.After(s.now()) {
		return nil, fmt.Errorf("expiry date is in the past: %w", ErrInvalidInput)
	}
	seller, err := s.users.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:               strings.ToUpper(strings.TrimSpace(in.Code)),
		SellerID:           seller.ID,
		SellerName:         seller.BusinessName,
		DiscountPercentage: in.DiscountPercentage,
		IsActive:           true,
		ExpiryDate:         in.ExpiryDate,
		MaxUses:            in.MaxUses,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	s.notifier.CouponCreated(ctx, coupon)
	return coupon, nil
}

// Validate checks that code can be redeemed now. Expired or used-up coupons
// are switched off as a side effect.
func (s *CouponService) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.Usable(s.now()) {
		return coupon, nil
	}
	if coupon.IsActive {
		coupon.IsActive = false
		if err := s.repo.Update(ctx, coupon); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("coupon %s: %w", coupon.Code, ErrCouponInvalid)
}

func (s *CouponService) ListBySeller(ctx context.Context, sellerID string) ([]models.Coupon, error) {
	coupons, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	return coupons, nil
}

// Deactivate switches off one of the seller's own coupons.
func (s *CouponService) Deactivate(ctx context.Context, sellerID, code string) (*models.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.SellerID != sellerID {
		return nil, fmt.Errorf("coupon %s belongs to another seller: %w", coupon.Code, ErrForbidden)
	}
	coupon.IsActive = false
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}
