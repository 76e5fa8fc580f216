package services

import (
	"context"
	"testing"
	"time"

	"rewear/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	buyerID = Identity{UserID: "u1", Email: buyer, Role: models.RoleBuyer}
	otherID = Identity{UserID: "u2", Email: "bob@example.com", Role: models.RoleBuyer}
	adminID = Identity{UserID: "a1", Email: "admin@example.com", Role: models.RoleAdmin}
)

type orderFixture struct {
	checkoutFixture
	orders *OrderService
	clock  time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{checkoutFixture: *newCheckoutFixture(t), clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	f.orders = NewOrderService(f.store, NewDispatcher(f.publisher, nil))
	f.orders.now = func() time.Time { return f.clock }
	return f
}

func (f *orderFixture) place(t *testing.T) *models.Order {
	t.Helper()
	ctx := context.Background()
	p := addProduct(t, f.store, "Linen Shirt", 10)
	_, err := f.cart.Add(ctx, buyer, p.ID, 1)
	require.NoError(t, err)
	order, err := f.checkout.Checkout(ctx, buyer, f.request())
	require.NoError(t, err)
	return order
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.place(t)

	_, err := f.orders.GetOrder(ctx, buyerID, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, adminID, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, otherID, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orders.GetOrder(ctx, buyerID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_BuyerCancelRelistsProducts(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.place(t)

	f.clock = f.clock.Add(time.Minute)
	got, err := f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	require.Len(t, got.TrackingHistory, 2)
	assert.Equal(t, f.clock, got.TrackingHistory[1].Timestamp)

	product, err := f.store.Products().GetByID(ctx, order.Items[0].ProductID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductApproved, product.Status)

	assert.Equal(t, []string{EventOrderPlaced, EventOrderStatusChanged}, f.publisher.keys())

	_, err = f.orders.UpdateStatus(ctx, adminID, order.ID, models.OrderShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateStatusRules(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.place(t)

	_, err := f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderShipped)
	assert.ErrorIs(t, err, ErrForbidden, "buyers cannot ship")

	_, err = f.orders.UpdateStatus(ctx, otherID, order.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrForbidden, "not the owner")

	_, err = f.orders.UpdateStatus(ctx, adminID, order.ID, models.OrderPlaced)
	assert.ErrorIs(t, err, ErrInvalidTransition, "same status recompute")

	_, err = f.orders.UpdateStatus(ctx, adminID, order.ID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderReturnRequested)
	assert.ErrorIs(t, err, ErrInvalidTransition, "return before delivery")

	for _, next := range []models.OrderStatus{models.OrderShipped, models.OrderInTransit, models.OrderDelivered} {
		_, err = f.orders.UpdateStatus(ctx, adminID, order.ID, next)
		require.NoError(t, err)
	}

	_, err = f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition, "delivered orders cannot be cancelled")

	got, err := f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderReturnRequested)
	require.NoError(t, err)
	assert.Len(t, got.TrackingHistory, 5)
	assert.Equal(t, "Linen Shirt", got.Items[0].ProductName)
}

func TestOrderService_AdvanceDue(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.place(t)
	step := 30 * time.Second

	moved, err := f.orders.AdvanceDue(ctx, step)
	require.NoError(t, err)
	assert.Equal(t, 0, moved, "not due yet")

	expect := []models.OrderStatus{models.OrderShipped, models.OrderInTransit, models.OrderDelivered}
	for _, want := range expect {
		f.clock = f.clock.Add(step)
		moved, err = f.orders.AdvanceDue(ctx, step)
		require.NoError(t, err)
		assert.Equal(t, 1, moved)

		got, err := f.orders.GetOrder(ctx, adminID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	// delivered is terminal for the simulation
	f.clock = f.clock.Add(time.Hour)
	moved, err = f.orders.AdvanceDue(ctx, step)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	// a return request is picked up again
	_, err = f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderReturnRequested)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		f.clock = f.clock.Add(step)
		_, err = f.orders.AdvanceDue(ctx, step)
		require.NoError(t, err)
	}
	got, err := f.orders.GetOrder(ctx, adminID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderReturned, got.Status)
	assert.True(t, got.Status.IsTerminal())
}

func TestOrderTracker_RunStopsWithContext(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)
	tracker := NewOrderTracker(f.orders, 0, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tracker.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := f.store.Orders().GetByID(context.Background(), order.ID)
		return err == nil && got.Status == models.OrderDelivered
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}
}

func TestOrderService_AdvanceDueSkipsOrderCancelledMeanwhile(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.place(t)
	step := 30 * time.Second
	f.clock = f.clock.Add(step)

	racing := &racingStore{Store: f.store}
	racing.afterList = func() {
		_, err := f.orders.UpdateStatus(ctx, buyerID, order.ID, models.OrderCancelled)
		require.NoError(t, err)
	}
	courier := NewOrderService(racing, NewDispatcher(f.publisher, nil))
	courier.now = func() time.Time { return f.clock }

	moved, err := courier.AdvanceDue(ctx, step)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	got, err := f.orders.GetOrder(ctx, adminID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
	require.Len(t, got.TrackingHistory, 2)
	assert.Equal(t, models.OrderCancelled, got.TrackingHistory[1].Status)

	product, err := f.store.Products().GetByID(ctx, order.Items[0].ProductID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductApproved, product.Status)
	assert.Equal(t, []string{EventOrderPlaced, EventOrderStatusChanged}, f.publisher.keys())
}
