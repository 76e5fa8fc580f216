package services

import (
	"context"
	"errors"
	"fmt"

	"rewear/internal/models"
	"rewear/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService is the server side of the buyer's cart.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the cart joined with current product details. Lines whose
// product disappeared are kept with status "unavailable" so the buyer can
// remove them.
func (s *CartService) Get(ctx context.Context, buyerEmail string) (*models.Cart, error) {
	items, err := s.carts.GetItems(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{BuyerEmail: buyerEmail, Items: make([]models.CartLine, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		line := models.CartLine{ProductID: item.ProductID, Quantity: item.Quantity, Status: "unavailable"}
		product, err := s.products.GetByID(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Name = product.Name
			line.Price = product.Price
			line.Images = product.Images
			line.Status = string(product.Status)
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		subtotal := lineTotal(line.Price, line.Quantity)
		line.Subtotal = subtotal.StringFixed(2)
		total = total.Add(subtotal)
		cart.Items = append(cart.Items, line)
	}
	cart.Total = total.StringFixed(2)
	return cart, nil
}

// Total returns just the formatted cart total.
func (s *CartService) Total(ctx context.Context, buyerEmail string) (string, error) {
	cart, err := s.Get(ctx, buyerEmail)
	if err != nil {
		return "", err
	}
	return cart.Total, nil
}

// Add puts an approved product into the cart. A product already present is
// rejected with ErrCartItemExists.
func (s *CartService) Add(ctx context.Context, buyerEmail, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductApproved {
		return nil, fmt.Errorf("product %s is %s: %w", productID, product.Status, ErrProductUnavailable)
	}

	err = s.carts.AddItem(ctx, &models.CartItem{BuyerEmail: buyerEmail, ProductID: productID, Quantity: quantity})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrCartItemExists)
		}
		return nil, err
	}
	return s.Get(ctx, buyerEmail)
}

// SetQuantity changes a line's quantity. A quantity below one removes it.
func (s *CartService) SetQuantity(ctx context.Context, buyerEmail, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return s.Remove(ctx, buyerEmail, productID)
	}
	if err := s.carts.UpdateQuantity(ctx, buyerEmail, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, buyerEmail)
}

func (s *CartService) Remove(ctx context.Context, buyerEmail, productID string) (*models.Cart, error) {
	if err := s.carts.RemoveItem(ctx, buyerEmail, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, buyerEmail)
}

func (s *CartService) Clear(ctx context.Context, buyerEmail string) error {
	return s.carts.Clear(ctx, buyerEmail)
}

func lineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}
