package services

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"rewear/internal/models"
	"rewear/internal/repositories"
)

// PaymentMethodInput carries the raw instrument. Only masked fields survive
// Mask; the card number and CVV are dropped.
type PaymentMethodInput struct {
	Type        models.PaymentType `json:"type" validate:"required,oneof=card paypal"`
	CardNumber  string             `json:"card_number" validate:"required_if=Type card"`
	HolderName  string             `json:"holder_name" validate:"required_if=Type card,max=200"`
	Expiry      string             `json:"expiry" validate:"required_if=Type card"`
	CVV         string             `json:"cvv" validate:"required_if=Type card"`
	PayPalEmail string             `json:"paypal_email" validate:"required_if=Type paypal"`
}

// PaymentMethodService stores masked payment instruments per user.
type PaymentMethodService struct {
	repo repositories.PaymentMethodRepository
	now  func() time.Time
}

func NewPaymentMethodService(repo repositories.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{repo: repo, now: time.Now}
}

func (s *PaymentMethodService) List(ctx context.Context, email string) ([]models.PaymentMethod, error) {
	methods, err := s.repo.ListByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	return methods, nil
}

func (s *PaymentMethodService) Create(ctx context.Context, email string, in PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := mask(in, s.now())
	if err != nil {
		return nil, err
	}
	method.UserEmail = email
	if err := s.repo.Create(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

// Update replaces the instrument, re-masking the new details.
func (s *PaymentMethodService) Update(ctx context.Context, email, id string, in PaymentMethodInput) (*models.PaymentMethod, error) {
	existing, err := s.owned(ctx, email, id)
	if err != nil {
		return nil, err
	}
	method, err := mask(in, s.now())
	if err != nil {
		return nil, err
	}
	method.ID = existing.ID
	method.UserEmail = existing.UserEmail
	method.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *PaymentMethodService) Delete(ctx context.Context, email, id string) error {
	if _, err := s.owned(ctx, email, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// owned hides other users' methods behind ErrNotFound.
func (s *PaymentMethodService) owned(ctx context.Context, email, id string) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if method.UserEmail != email {
		return nil, fmt.Errorf("payment method %s: %w", id, ErrNotFound)
	}
	return method, nil
}

func mask(in PaymentMethodInput, now time.Time) (*models.PaymentMethod, error) {
	switch in.Type {
	case models.PaymentCard:
		number := digitsOnly(in.CardNumber)
		if len(number) < 12 || len(number) > 19 || !luhnValid(number) {
			return nil, fmt.Errorf("card number is not valid: %w", ErrInvalidInput)
		}
		cvv := strings.TrimSpace(in.CVV)
		if len(cvv) < 3 || len(cvv) > 4 || digitsOnly(cvv) != cvv {
			return nil, fmt.Errorf("cvv must be 3 or 4 digits: %w", ErrInvalidInput)
		}
		expiry, err := parseExpiry(in.Expiry, now)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(in.HolderName) == "" {
			return nil, fmt.Errorf("holder name is required: %w", ErrInvalidInput)
		}
		return &models.PaymentMethod{
			Type:       models.PaymentCard,
			Brand:      cardBrand(number),
			Last4:      number[len(number)-4:],
			HolderName: strings.TrimSpace(in.HolderName),
			Expiry:     expiry,
		}, nil
	case models.PaymentPayPal:
		addr, err := mail.ParseAddress(in.PayPalEmail)
		if err != nil {
			return nil, fmt.Errorf("paypal email is not valid: %w", ErrInvalidInput)
		}
		return &models.PaymentMethod{
			Type:        models.PaymentPayPal,
			PayPalEmail: maskEmail(addr.Address),
		}, nil
	default:
		return nil, fmt.Errorf("payment type %q cannot be stored: %w", in.Type, ErrInvalidInput)
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r != ' ' && r != '-' {
			return ""
		}
	}
	return b.String()
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func cardBrand(number string) string {
	prefix2, _ := strconv.Atoi(number[:2])
	prefix4, _ := strconv.Atoi(number[:4])
	switch {
	case number[0] == '4':
		return "visa"
	case prefix2 >= 51 && prefix2 <= 55, prefix4 >= 2221 && prefix4 <= 2720:
		return "mastercard"
	case prefix2 == 34 || prefix2 == 37:
		return "amex"
	case prefix4 == 6011 || prefix2 == 65:
		return "discover"
	default:
		return "card"
	}
}

// parseExpiry accepts MM/YY or MM/YYYY and returns MM/YY. A card is valid
// through the last day of its expiry month.
func parseExpiry(s string, now time.Time) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("expiry must be MM/YY: %w", ErrInvalidInput)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("expiry month is not valid: %w", ErrInvalidInput)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || (len(parts[1]) != 2 && len(parts[1]) != 4) {
		return "", fmt.Errorf("expiry year is not valid: %w", ErrInvalidInput)
	}
	if year < 100 {
		year += 2000
	}
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(firstOfNext) {
		return "", fmt.Errorf("card expired: %w", ErrInvalidInput)
	}
	return fmt.Sprintf("%02d/%02d", month, year%100), nil
}

func maskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
