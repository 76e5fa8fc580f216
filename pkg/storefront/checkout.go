package storefront

import (
	"context"
	"net/http"
	"strings"

	"rewear/internal/models"
)

// PaymentSelection picks how an order is paid. MethodID names a saved card or
// paypal account and is not needed for cash.
type PaymentSelection struct {
	Type     models.PaymentType `json:"type"`
	MethodID string             `json:"method_id,omitempty"`
}

type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Payment         PaymentSelection       `json:"payment"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
}

// Checkout submits the synced cart as an order.
type Checkout struct {
	client *Client
	cart   *CartStore
}

func NewCheckout(client *Client, cart *CartStore) *Checkout {
	return &Checkout{client: client, cart: cart}
}

func (req CheckoutRequest) validate() error {
	switch req.Payment.Type {
	case models.PaymentCash:
	case models.PaymentCard, models.PaymentPayPal:
		if req.Payment.MethodID == "" {
			return ErrNoPaymentMethod
		}
	default:
		return ErrNoPaymentMethod
	}
	a := req.ShippingAddress
	for _, field := range []string{a.Name, a.Phone, a.Address, a.PostalCode} {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

// Submit finalizes the cart with one request. Nothing is sent when the cart
// is empty or the request is incomplete. The local cart only changes after
// the server confirms the order.
func (c *Checkout) Submit(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	if err := c.client.requireToken(); err != nil {
		return nil, err
	}
	if len(c.cart.Items()) == 0 {
		return nil, ErrEmptyCart
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	var resp struct {
		Message string        `json:"message"`
		Order   *models.Order `json:"order"`
	}
	if err := c.client.do(ctx, http.MethodPut, "/cart/payment-status", req, &resp); err != nil {
		return nil, err
	}
	// The server empties the cart in the same transaction as the order.
	if err := c.cart.Refresh(ctx); err != nil {
		c.cart.reset()
	}
	return resp.Order, nil
}
