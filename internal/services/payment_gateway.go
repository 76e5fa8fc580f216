package services

import (
	"context"
	"fmt"

	"rewear/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway authorises a charge and returns a reference.
type PaymentGateway interface {
	Authorize(ctx context.Context, amount decimal.Decimal, method models.PaymentSnapshot) (string, error)
}

// DeclinedCardLast4 is the test card suffix the simulated gateway refuses.
const DeclinedCardLast4 = "0002"

// SimulatedGateway approves every payment except cards ending in
// DeclinedCardLast4. No money moves.
type SimulatedGateway struct{}

func (SimulatedGateway) Authorize(ctx context.Context, amount decimal.Decimal, method models.PaymentSnapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if amount.IsNegative() {
		return "", fmt.Errorf("negative amount %s: %w", amount.StringFixed(2), ErrPaymentDeclined)
	}
	if method.Type == models.PaymentCard && method.Last4 == DeclinedCardLast4 {
		return "", fmt.Errorf("card ending %s: %w", method.Last4, ErrPaymentDeclined)
	}
	return "sim_" + uuid.New().String(), nil
}
