package storefront

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"rewear/internal/models"

	"github.com/shopspring/decimal"
)

// CartStore mirrors the buyer's server side cart. Every mutation is followed
// by a Refresh so the local copy is always the server's answer.
type CartStore struct {
	client *Client

	mu   sync.RWMutex
	cart models.Cart
}

func NewCartStore(client *Client) *CartStore {
	return &CartStore{client: client}
}

// Refresh replaces the local cart with the server's.
func (s *CartStore) Refresh(ctx context.Context) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	var cart models.Cart
	if err := s.client.do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return err
	}
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the last synced lines.
func (s *CartStore) Items() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.CartLine, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

func (s *CartStore) contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, line := range s.cart.Items {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// Subtotal sums price times quantity over the synced lines.
func (s *CartStore) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, line := range s.cart.Items {
		total = total.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Add puts one unit of productID in the cart.
func (s *CartStore) Add(ctx context.Context, productID string) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	if s.contains(productID) {
		return ErrItemExists
	}
	req := map[string]interface{}{"product_id": productID, "quantity": 1}
	if err := s.client.do(ctx, http.MethodPost, "/cart", req, nil); err != nil {
		if statusOf(err) == http.StatusConflict {
			return ErrItemExists
		}
		return err
	}
	return s.Refresh(ctx)
}

func (s *CartStore) Remove(ctx context.Context, productID string) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	path := "/cart/delete?product_id=" + url.QueryEscape(productID)
	if err := s.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// SetQuantity changes a line's quantity. Values below one remove the line.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}
	if err := s.client.requireToken(); err != nil {
		return err
	}
	req := map[string]interface{}{"product_id": productID, "quantity": quantity}
	if err := s.client.do(ctx, http.MethodPut, "/cart/update", req, nil); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *CartStore) Clear(ctx context.Context) error {
	if err := s.client.requireToken(); err != nil {
		return err
	}
	if err := s.client.do(ctx, http.MethodDelete, "/cart/clear", nil, nil); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *CartStore) reset() {
	s.mu.Lock()
	s.cart = models.Cart{BuyerEmail: s.cart.BuyerEmail, Items: []models.CartLine{}, Total: "0.00"}
	s.mu.Unlock()
}
