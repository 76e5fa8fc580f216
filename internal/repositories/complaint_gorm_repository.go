package repositories

import (
	"context"
	"fmt"

	"rewear/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMComplaintRepository is a GORM implementation of ComplaintRepository.
type GORMComplaintRepository struct {
	db *gorm.DB
}

func NewGORMComplaintRepository(db *gorm.DB) *GORMComplaintRepository {
	return &GORMComplaintRepository{db: db}
}

func (r *GORMComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(complaint).Error; err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *GORMComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.WithContext(ctx).First(&complaint, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("complaint %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get complaint %s: %w", id, err)
	}
	return &complaint, nil
}

func (r *GORMComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var complaints []models.Complaint
	if err := q.Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

func (r *GORMComplaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	res := r.db.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", complaint.ID).
		Select("status", "resolution", "updated_at").
		Updates(complaint)
	if res.Error != nil {
		return fmt.Errorf("failed to update complaint: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("complaint %s: %w", complaint.ID, ErrNotFound)
	}
	return nil
}
