package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rewear/internal/logger"
	"rewear/internal/models"

	"go.uber.org/zap"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message published to the broker for every order change.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	BuyerEmail string             `json:"buyer_email"`
	Status     models.OrderStatus `json:"status"`
	Total      float64            `json:"total"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func newOrderEvent(eventType string, order *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		BuyerEmail: order.BuyerEmail,
		Status:     order.Status,
		Total:      order.TotalAmount,
		OccurredAt: at,
	}
}

// Publisher is the broker side of event delivery. pkg/rabbitmq and pkg/kafka
// both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Dispatcher publishes order events. Without a publisher events go straight to
// the notifier.
type Dispatcher struct {
	publisher Publisher
	notifier  *Notifier
}

func NewDispatcher(publisher Publisher, notifier *Notifier) *Dispatcher {
	return &Dispatcher{publisher: publisher, notifier: notifier}
}

// Emit never fails the caller: the order is already committed, so delivery
// errors are logged and dropped.
func (d *Dispatcher) Emit(ctx context.Context, ev OrderEvent) {
	if d == nil {
		return
	}
	log := logger.FromCtx(ctx)
	if d.publisher == nil {
		if d.notifier != nil {
			d.notifier.OrderEvent(ctx, ev)
		}
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Error("failed to marshal order event", zap.String("order_id", ev.OrderID), zap.Error(err))
		return
	}
	if err := d.publisher.Publish(ctx, ev.Type, body); err != nil {
		log.Warn("failed to publish order event",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Error(err),
		)
		return
	}
	log.Debug("published order event", zap.String("type", ev.Type), zap.String("order_id", ev.OrderID))
}

// HandleMessage is the broker consumer callback. Malformed messages are
// rejected so the broker does not redeliver them forever.
func (n *Notifier) HandleMessage(ctx context.Context, routingKey string, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("malformed %s event: %w", routingKey, err)
	}
	n.OrderEvent(ctx, ev)
	return nil
}
