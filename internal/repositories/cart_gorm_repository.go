package repositories

import (
	"context"
	"fmt"

	"rewear/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetItems returns the buyer's cart items in insertion order.
func (r *GORMCartRepository) GetItems(ctx context.Context, buyerEmail string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Where("buyer_email = ?", buyerEmail).Order("created_at, id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get cart for %s: %w", buyerEmail, err)
	}
	return items, nil
}

func (r *GORMCartRepository) GetItem(ctx context.Context, buyerEmail, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "buyer_email = ? AND product_id = ?", buyerEmail, productID).Error
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item %s: %w", productID, err)
	}
	return &item, nil
}

// AddItem inserts a new line. A product already in the cart yields ErrDuplicate.
func (r *GORMCartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("product %s already in cart: %w", item.ProductID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateQuantity(ctx context.Context, buyerEmail, productID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("buyer_email = ? AND product_id = ?", buyerEmail, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) RemoveItem(ctx context.Context, buyerEmail, productID string) error {
	res := r.db.WithContext(ctx).Where("buyer_email = ? AND product_id = ?", buyerEmail, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (r *GORMCartRepository) Clear(ctx context.Context, buyerEmail string) error {
	if err := r.db.WithContext(ctx).Where("buyer_email = ?", buyerEmail).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
