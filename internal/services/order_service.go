package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewear/internal/logger"
	"rewear/internal/models"
	"rewear/internal/repositories"

	"go.uber.org/zap"
)

// autoStatuses are the states the courier simulation moves forward on its own.
var autoStatuses = []models.OrderStatus{
	models.OrderPlaced,
	models.OrderShipped,
	models.OrderInTransit,
	models.OrderReturnRequested,
	models.OrderReturnPickupScheduled,
	models.OrderReturnPicked,
	models.OrderReturnInTransit,
}

// errOrderMoved aborts an automatic step when the order changed after it was listed.
var errOrderMoved = errors.New("order status changed since listing")

// OrderService handles business logic related to orders.
type OrderService struct {
	store      repositories.Store
	dispatcher *Dispatcher
	now        func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(store repositories.Store, dispatcher *Dispatcher) *OrderService {
	return &OrderService{store: store, dispatcher: dispatcher, now: time.Now}
}

// ListForBuyer returns the buyer's orders, newest first.
func (s *OrderService) ListForBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByBuyer(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListAll is the admin view, optionally narrowed to some statuses.
func (s *OrderService) ListAll(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder returns an order the caller owns, or any order for admins.
func (s *OrderService) GetOrder(ctx context.Context, who Identity, id string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() && order.BuyerEmail != who.Email {
		return nil, fmt.Errorf("order %s: %w", id, ErrForbidden)
	}
	return order, nil
}

// UpdateStatus applies an explicit transition. Buyers may only cancel or
// request a return on their own orders.
func (s *OrderService) UpdateStatus(ctx context.Context, who Identity, id string, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", target, ErrInvalidInput)
	}
	if !who.IsAdmin() && target != models.OrderCancelled && target != models.OrderReturnRequested {
		return nil, fmt.Errorf("buyers cannot set status %s: %w", target, ErrForbidden)
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !who.IsAdmin() && order.BuyerEmail != who.Email {
			return fmt.Errorf("order %s: %w", id, ErrForbidden)
		}
		return s.transition(ctx, tx, order, target)
	})
	if err != nil {
		return nil, err
	}
	s.emitStatusChanged(ctx, order)
	return order, nil
}

// transition validates and persists one step. Cancelling puts the products
// back on sale.
func (s *OrderService) transition(ctx context.Context, tx repositories.Store, order *models.Order, target models.OrderStatus) error {
	if order.Status == target {
		return fmt.Errorf("order %s is already %s: %w", order.ID, target, ErrInvalidTransition)
	}
	if !order.Status.CanTransition(target) {
		return fmt.Errorf("order %s cannot move from %s to %s: %w", order.ID, order.Status, target, ErrInvalidTransition)
	}

	from := order.Status
	order.Advance(target, s.now().UTC())
	if err := tx.Orders().UpdateStatus(ctx, order, from); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return err
	}
	if target == models.OrderCancelled {
		ids := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		if err := tx.Products().SetStatus(ctx, models.ProductSold, models.ProductApproved, ids...); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceDue moves every auto-progressing order whose current status is older
// than step one state forward. It returns how many orders moved.
func (s *OrderService) AdvanceDue(ctx context.Context, step time.Duration) (int, error) {
	orders, err := s.store.Orders().ListByStatus(ctx, autoStatuses...)
	if err != nil {
		return 0, err
	}

	log := logger.FromCtx(ctx)
	now := s.now().UTC()
	moved := 0
	for i := range orders {
		order := &orders[i]
		if now.Sub(order.LastTransition()) < step {
			continue
		}
		next, ok := order.Status.Next()
		if !ok {
			continue
		}
		var current *models.Order
		err := s.store.Transaction(ctx, func(tx repositories.Store) error {
			var err error
			current, err = tx.Orders().GetByID(ctx, order.ID)
			if err != nil {
				return err
			}
			if current.Status != order.Status {
				return errOrderMoved
			}
			return s.transition(ctx, tx, current, next)
		})
		switch {
		case errors.Is(err, errOrderMoved), errors.Is(err, repositories.ErrStale):
			log.Debug("order changed before it could advance", zap.String("order_id", order.ID))
			continue
		case err != nil:
			log.Warn("failed to advance order", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		moved++
		s.emitStatusChanged(ctx, current)
	}
	return moved, nil
}

func (s *OrderService) emitStatusChanged(ctx context.Context, order *models.Order) {
	logger.FromCtx(ctx).Info("order status changed", zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
	s.dispatcher.Emit(ctx, newOrderEvent(EventOrderStatusChanged, order, order.UpdatedAt))
}
