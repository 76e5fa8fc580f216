package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewear/internal/logger"
	"rewear/internal/models"
	"rewear/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentSelection picks how the order is paid. MethodID refers to a stored
// payment method and is required for card and paypal.
type PaymentSelection struct {
	Type     models.PaymentType `json:"type" validate:"required,oneof=card paypal cash"`
	MethodID string             `json:"method_id" validate:"required_unless=Type cash"`
}

// CheckoutRequest is the finalize payload.
type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address" validate:"required"`
	Payment         PaymentSelection       `json:"payment" validate:"required"`
	CouponCode      string                 `json:"coupon_code" validate:"omitempty,max=64"`
}

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	store      repositories.Store
	gateway    PaymentGateway
	dispatcher *Dispatcher
	now        func() time.Time
}

func NewCheckoutService(store repositories.Store, gateway PaymentGateway, dispatcher *Dispatcher) *CheckoutService {
	return &CheckoutService{store: store, gateway: gateway, dispatcher: dispatcher, now: time.Now}
}

// Checkout runs in one transaction: if any step fails nothing is written and
// the cart is left as it was.
func (s *CheckoutService) Checkout(ctx context.Context, buyerEmail string, req CheckoutRequest) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		items, err := tx.Carts().GetItems(ctx, buyerEmail)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		payment, err := s.resolvePayment(ctx, tx, buyerEmail, req.Payment)
		if err != nil {
			return err
		}

		snapshot := make([]models.OrderItem, 0, len(items))
		productIDs := make([]string, 0, len(items))
		subtotal := decimal.Zero
		for _, item := range items {
			product, err := tx.Products().GetByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return fmt.Errorf("product %s: %w", item.ProductID, ErrProductUnavailable)
				}
				return err
			}
			if product.Status != models.ProductApproved {
				return fmt.Errorf("product %q is %s: %w", product.Name, product.Status, ErrProductUnavailable)
			}
			var image string
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			snapshot = append(snapshot, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
				Image:       image,
			})
			productIDs = append(productIDs, product.ID)
			subtotal = subtotal.Add(lineTotal(product.Price, item.Quantity))
		}

		now := s.now().UTC()
		discount, couponCode, err := s.applyCoupon(ctx, tx, req.CouponCode, subtotal, now)
		if err != nil {
			return err
		}
		total := subtotal.Sub(discount)

		ref, err := s.gateway.Authorize(ctx, total, payment)
		if err != nil {
			return fmt.Errorf("payment authorisation failed: %w", err)
		}

		order = &models.Order{
			BuyerEmail:      buyerEmail,
			Items:           snapshot,
			Subtotal:        subtotal.InexactFloat64(),
			Discount:        discount.InexactFloat64(),
			TotalAmount:     total.InexactFloat64(),
			CouponCode:      couponCode,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   payment,
			PaymentRef:      ref,
			CreatedAt:       now,
		}
		order.Advance(models.OrderPlaced, now)

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Products().SetStatus(ctx, models.ProductApproved, models.ProductSold, productIDs...); err != nil {
			if errors.Is(err, repositories.ErrStale) {
				return fmt.Errorf("%w: %w", ErrProductUnavailable, err)
			}
			return err
		}
		return tx.Carts().Clear(ctx, buyerEmail)
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("buyer", buyerEmail),
		zap.Float64("total", order.TotalAmount),
	)
	s.dispatcher.Emit(ctx, newOrderEvent(EventOrderPlaced, order, order.CreatedAt))
	return order, nil
}

func (s *CheckoutService) resolvePayment(ctx context.Context, tx repositories.Store, buyerEmail string, sel PaymentSelection) (models.PaymentSnapshot, error) {
	switch sel.Type {
	case models.PaymentCash:
		return models.PaymentSnapshot{Type: models.PaymentCash}, nil
	case models.PaymentCard, models.PaymentPayPal:
	default:
		return models.PaymentSnapshot{}, fmt.Errorf("payment type %q: %w", sel.Type, ErrInvalidInput)
	}
	if sel.MethodID == "" {
		return models.PaymentSnapshot{}, fmt.Errorf("payment method is required: %w", ErrInvalidInput)
	}
	method, err := tx.PaymentMethods().GetByID(ctx, sel.MethodID)
	if err != nil {
		return models.PaymentSnapshot{}, err
	}
	if method.UserEmail != buyerEmail {
		return models.PaymentSnapshot{}, fmt.Errorf("payment method %s: %w", sel.MethodID, ErrNotFound)
	}
	if method.Type != sel.Type {
		return models.PaymentSnapshot{}, fmt.Errorf("payment method %s is %s, not %s: %w", sel.MethodID, method.Type, sel.Type, ErrInvalidInput)
	}
	return method.Snapshot(), nil
}

// applyCoupon validates the code and counts the use. An empty code is a no-op.
func (s *CheckoutService) applyCoupon(ctx context.Context, tx repositories.Store, code string, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, string, error) {
	if code == "" {
		return decimal.Zero, "", nil
	}
	coupon, err := tx.Coupons().GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, "", fmt.Errorf("coupon %s: %w", code, ErrCouponInvalid)
		}
		return decimal.Zero, "", err
	}
	if !coupon.Usable(now) {
		return decimal.Zero, "", fmt.Errorf("coupon %s: %w", coupon.Code, ErrCouponInvalid)
	}
	if err := tx.Coupons().Redeem(ctx, coupon.Code, now); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return decimal.Zero, "", fmt.Errorf("%w: %w", ErrCouponInvalid, err)
		}
		return decimal.Zero, "", err
	}
	return couponDiscount(subtotal, coupon.DiscountPercentage), coupon.Code, nil
}

func couponDiscount(subtotal decimal.Decimal, percentage float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(percentage)).Div(decimal.NewFromInt(100)).Round(2)
}
