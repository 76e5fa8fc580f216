package repositories

import (
	"context"
	"fmt"

	"rewear/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPaymentMethodRepository is a GORM implementation of PaymentMethodRepository.
type GORMPaymentMethodRepository struct {
	db *gorm.DB
}

func NewGORMPaymentMethodRepository(db *gorm.DB) *GORMPaymentMethodRepository {
	return &GORMPaymentMethodRepository{db: db}
}

func (r *GORMPaymentMethodRepository) Create(ctx context.Context, method *models.PaymentMethod) error {
	if method.ID == "" {
		method.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *GORMPaymentMethodRepository) GetByID(ctx context.Context, id string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("payment method %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment method %s: %w", id, err)
	}
	return &method, nil
}

func (r *GORMPaymentMethodRepository) ListByUser(ctx context.Context, email string) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.WithContext(ctx).Where("user_email = ?", email).Order("created_at").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

func (r *GORMPaymentMethodRepository) Update(ctx context.Context, method *models.PaymentMethod) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("id = ?", method.ID).Select("*").Omit("created_at").Updates(method)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment method %s: %w", method.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMPaymentMethodRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.PaymentMethod{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment method %s: %w", id, ErrNotFound)
	}
	return nil
}
