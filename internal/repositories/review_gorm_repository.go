package repositories

import (
	"context"
	"fmt"

	"rewear/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create stores a review. A second review of the same order by the same user yields ErrDuplicate.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("review for order %s: %w", review.OrderID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *GORMReviewRepository) Find(ctx context.Context, orderID, userID string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "order_id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("review for order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *GORMReviewRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check reviews: %w", err)
	}
	return count > 0, nil
}
