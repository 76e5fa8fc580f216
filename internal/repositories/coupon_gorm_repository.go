package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rewear/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

// Create stores the coupon with its code upper-cased.
func (r *GORMCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	coupon.Code = strings.ToUpper(coupon.Code)
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("coupon %s: %w", coupon.Code, ErrDuplicate)
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

func (r *GORMCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("coupon %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get coupon %s: %w", code, err)
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (r *GORMCouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", coupon.ID).Select("*").Omit("created_at").Updates(coupon)
	if res.Error != nil {
		return fmt.Errorf("failed to update coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s: %w", coupon.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMCouponRepository) Redeem(ctx context.Context, code string, now time.Time) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("code = ? AND is_active = ?", code, true).
		Where("(expiry_date IS NULL OR expiry_date >= ?)", now).
		Where("(max_uses = 0 OR used_count < max_uses)").
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s cannot be redeemed: %w", code, ErrStale)
	}
	return nil
}
