package services

import (
	"context"
	"time"

	"rewear/internal/logger"

	"go.uber.org/zap"
)

// OrderTracker simulates the courier: every interval it advances orders that
// have sat in their current state for at least step.
type OrderTracker struct {
	orders   *OrderService
	step     time.Duration
	interval time.Duration
}

func NewOrderTracker(orders *OrderService, step, interval time.Duration) *OrderTracker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &OrderTracker{orders: orders, step: step, interval: interval}
}

// Run blocks until ctx is done.
func (t *OrderTracker) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(zap.String("component", "order_tracker"))
	log.Info("order tracker started", zap.Duration("step", t.step), zap.Duration("interval", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("order tracker stopped")
			return nil
		case <-ticker.C:
			moved, err := t.orders.AdvanceDue(ctx, t.step)
			if err != nil {
				log.Error("order tracker scan failed", zap.Error(err))
				continue
			}
			if moved > 0 {
				log.Debug("advanced orders", zap.Int("count", moved))
			}
		}
	}
}
