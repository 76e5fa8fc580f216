package services

import (
	"context"
	"testing"
	"time"

	"rewear/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("card keeps only masked fields", func(t *testing.T) {
		m, err := mask(PaymentMethodInput{
			Type: models.PaymentCard, CardNumber: "4242 4242 4242 4242", HolderName: " Ann Lee ", Expiry: "6/2024", CVV: "123",
		}, now)
		require.NoError(t, err)
		assert.Equal(t, "visa", m.Brand)
		assert.Equal(t, "4242", m.Last4)
		assert.Equal(t, "Ann Lee", m.HolderName)
		assert.Equal(t, "06/24", m.Expiry)
	})

	t.Run("brands", func(t *testing.T) {
		for number, brand := range map[string]string{
			"5555555555554444": "mastercard",
			"2223003122003222": "mastercard",
			"378282246310005":  "amex",
			"6011111111111117": "discover",
		} {
			m, err := mask(PaymentMethodInput{Type: models.PaymentCard, CardNumber: number, HolderName: "A", Expiry: "12/30", CVV: "1234"}, now)
			require.NoError(t, err, number)
			assert.Equal(t, brand, m.Brand, number)
		}
	})

	t.Run("paypal email is masked", func(t *testing.T) {
		m, err := mask(PaymentMethodInput{Type: models.PaymentPayPal, PayPalEmail: "jane.doe@example.com"}, now)
		require.NoError(t, err)
		assert.Equal(t, "j***@example.com", m.PayPalEmail)
	})

	bad := map[string]PaymentMethodInput{
		"luhn":        {Type: models.PaymentCard, CardNumber: "4242424242424241", HolderName: "A", Expiry: "12/30", CVV: "123"},
		"letters":     {Type: models.PaymentCard, CardNumber: "4242abcd42424242", HolderName: "A", Expiry: "12/30", CVV: "123"},
		"cvv":         {Type: models.PaymentCard, CardNumber: "4242424242424242", HolderName: "A", Expiry: "12/30", CVV: "12"},
		"expired":     {Type: models.PaymentCard, CardNumber: "4242424242424242", HolderName: "A", Expiry: "05/24", CVV: "123"},
		"month":       {Type: models.PaymentCard, CardNumber: "4242424242424242", HolderName: "A", Expiry: "13/30", CVV: "123"},
		"holder":      {Type: models.PaymentCard, CardNumber: "4242424242424242", Expiry: "12/30", CVV: "123"},
		"paypal":      {Type: models.PaymentPayPal, PayPalEmail: "not-an-email"},
		"cash stored": {Type: models.PaymentCash},
	}
	for name, in := range bad {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := mask(in, now)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPaymentMethodService_Ownership(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewPaymentMethodService(store.PaymentMethods())
	svc.now = fixedClock(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	card := PaymentMethodInput{Type: models.PaymentCard, CardNumber: "4242424242424242", HolderName: "Ann", Expiry: "12/30", CVV: "123"}
	m, err := svc.Create(ctx, buyer, card)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "bob@example.com", m.ID, card)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "bob@example.com", m.ID), ErrNotFound)

	updated, err := svc.Update(ctx, buyer, m.ID, PaymentMethodInput{Type: models.PaymentPayPal, PayPalEmail: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Empty(t, updated.Last4)

	list, err := svc.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PaymentPayPal, list[0].Type)
	assert.Equal(t, "a***@example.com", list[0].PayPalEmail)

	require.NoError(t, svc.Delete(ctx, buyer, m.ID))
	list, err = svc.List(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, list)
}
