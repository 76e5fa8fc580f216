package services

import (
	"context"
	"fmt"
	"strings"

	"rewear/internal/models"
	"rewear/internal/repositories"
)

// ComplaintInput is a buyer complaint or a contact-us message.
type ComplaintInput struct {
	FirstName    string `json:"firstname" validate:"required,max=100"`
	LastName     string `json:"lastname" validate:"max=100"`
	MobileNumber string `json:"mobilenumber" validate:"omitempty,min=6,max=32"`
	Email        string `json:"email" validate:"omitempty,email"`
	IssueType    string `json:"issue_type" validate:"max=100"`
	Details      string `json:"details" validate:"required,min=5"`
	OrderID      string `json:"orderID" validate:"omitempty,max=36"`
}

// ComplaintService tracks buyer complaints and inquiries.
type ComplaintService struct {
	repo     repositories.ComplaintRepository
	notifier *Notifier
}

func NewComplaintService(repo repositories.ComplaintRepository, notifier *Notifier) *ComplaintService {
	return &ComplaintService{repo: repo, notifier: notifier}
}

func (s *ComplaintService) create(ctx context.Context, email, issueType string, in ComplaintInput) (*models.Complaint, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required: %w", ErrInvalidInput)
	}
	if len(strings.TrimSpace(in.Details)) < 5 {
		return nil, fmt.Errorf("details must be at least 5 characters: %w", ErrInvalidInput)
	}
	c := &models.Complaint{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MobileNumber: in.MobileNumber,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		IssueType:    issueType,
		Details:      in.Details,
		OrderID:      in.OrderID,
		Status:       models.ComplaintInReview,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.notifier.ComplaintReceived(ctx, c)
	return c, nil
}

// Create files a complaint under the caller's account email.
func (s *ComplaintService) Create(ctx context.Context, who Identity, in ComplaintInput) (*models.Complaint, error) {
	if strings.TrimSpace(in.IssueType) == "" {
		return nil, fmt.Errorf("issue type is required: %w", ErrInvalidInput)
	}
	return s.create(ctx, who.Email, in.IssueType, in)
}

// Contact stores an anonymous inquiry as a General Inquiry complaint.
func (s *ComplaintService) Contact(ctx context.Context, in ComplaintInput) (*models.Complaint, error) {
	return s.create(ctx, in.Email, models.IssueGeneralInquiry, in)
}

func (s *ComplaintService) ListOwn(ctx context.Context, who Identity) ([]models.Complaint, error) {
	return s.list(ctx, repositories.ComplaintFilter{Email: who.Email})
}

// ListByStatus shows admins every complaint and everyone else their own.
func (s *ComplaintService) ListByStatus(ctx context.Context, who Identity, status string) ([]models.Complaint, error) {
	if status != models.ComplaintInReview && status != models.ComplaintClosed {
		return nil, fmt.Errorf("unknown complaint status %q: %w", status, ErrInvalidInput)
	}
	filter := repositories.ComplaintFilter{Status: status}
	if !who.IsAdmin() {
		filter.Email = who.Email
	}
	return s.list(ctx, filter)
}

func (s *ComplaintService) list(ctx context.Context, filter repositories.ComplaintFilter) ([]models.Complaint, error) {
	complaints, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	return complaints, nil
}

func (s *ComplaintService) Get(ctx context.Context, who Identity, id string) (*models.Complaint, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() && c.Email != who.Email {
		return nil, fmt.Errorf("complaint %s: %w", id, ErrForbidden)
	}
	return c, nil
}

// Close resolves a complaint and tells the complainant.
func (s *ComplaintService) Close(ctx context.Context, id, resolution string) (*models.Complaint, error) {
	if strings.TrimSpace(resolution) == "" {
		return nil, fmt.Errorf("resolution is required: %w", ErrInvalidInput)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == models.ComplaintClosed {
		return nil, fmt.Errorf("complaint %s is already closed: %w", id, ErrInvalidInput)
	}
	c.Status = models.ComplaintClosed
	c.Resolution = resolution
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.notifier.ComplaintClosed(ctx, c)
	return c, nil
}
