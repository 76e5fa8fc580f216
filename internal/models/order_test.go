package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderPlaced:    {OrderShipped, OrderCancelled},
		OrderShipped:   {OrderInTransit, OrderCancelled},
		OrderInTransit: {OrderDelivered, OrderCancelled},
		OrderDelivered: {OrderReturnRequested},
	}
	for from, targets := range allowed {
		for _, to := range targets {
			assert.True(t, from.CanTransition(to), "%s -> %s", from, to)
		}
	}

	assert.False(t, OrderDelivered.CanTransition(OrderCancelled))
	assert.False(t, OrderCancelled.CanTransition(OrderPlaced))
	assert.False(t, OrderReturned.CanTransition(OrderReturnRequested))
	assert.False(t, OrderPlaced.CanTransition(OrderPlaced))
	assert.False(t, OrderPlaced.CanTransition(OrderDelivered))
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderDelivered, OrderCancelled, OrderReturned} {
		assert.True(t, s.IsTerminal(), s)
		_, ok := s.Next()
		assert.False(t, ok, s)
	}
	for _, s := range []OrderStatus{OrderPlaced, OrderShipped, OrderReturnPicked} {
		assert.False(t, s.IsTerminal(), s)
	}
	assert.False(t, OrderStatus("lost").Valid())
}

func TestOrderStatus_NextWalksBothPaths(t *testing.T) {
	walk := func(s OrderStatus) []OrderStatus {
		var path []OrderStatus
		for {
			next, ok := s.Next()
			if !ok {
				return path
			}
			path = append(path, next)
			s = next
		}
	}
	assert.Equal(t, []OrderStatus{OrderShipped, OrderInTransit, OrderDelivered}, walk(OrderPlaced))
	assert.Equal(t, []OrderStatus{OrderReturnPickupScheduled, OrderReturnPicked, OrderReturnInTransit, OrderReturned}, walk(OrderReturnRequested))
}

func TestOrder_Advance(t *testing.T) {
	placed := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	o := &Order{CreatedAt: placed}
	assert.Equal(t, placed, o.LastTransition())

	o.Advance(OrderPlaced, placed)
	o.Advance(OrderShipped, placed.Add(time.Hour))

	assert.Equal(t, OrderShipped, o.Status)
	assert.Len(t, o.TrackingHistory, 2)
	assert.Equal(t, "Order has been shipped", o.TrackingHistory[1].Description)
	assert.Equal(t, placed.Add(time.Hour), o.LastTransition())
}

func TestCoupon_Usable(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	assert.True(t, (&Coupon{IsActive: true}).Usable(now))
	assert.True(t, (&Coupon{IsActive: true, ExpiryDate: &later, MaxUses: 2, UsedCount: 1}).Usable(now))
	assert.False(t, (&Coupon{IsActive: false}).Usable(now))
	assert.False(t, (&Coupon{IsActive: true, ExpiryDate: &earlier}).Usable(now))
	assert.False(t, (&Coupon{IsActive: true, MaxUses: 1, UsedCount: 1}).Usable(now))
}
