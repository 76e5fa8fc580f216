package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rewear/internal/models"
	"rewear/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var address = models.ShippingAddress{Name: "Ann Lee", Phone: "5550100", Address: "1 Main St", PostalCode: "10001"}

type checkoutFixture struct {
	store     *repositories.GORMStore
	cart      *CartService
	checkout  *CheckoutService
	publisher *fakePublisher
	card      *models.PaymentMethod
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newTestStore(t)
	pub := &fakePublisher{}
	f := &checkoutFixture{
		store:     store,
		cart:      NewCartService(store.Carts(), store.Products()),
		checkout:  NewCheckoutService(store, SimulatedGateway{}, NewDispatcher(pub, nil)),
		publisher: pub,
	}
	f.checkout.now = fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	f.card = &models.PaymentMethod{UserEmail: buyer, Type: models.PaymentCard, Brand: "visa", Last4: "4242", HolderName: "Ann Lee", Expiry: "12/30"}
	require.NoError(t, store.PaymentMethods().Create(context.Background(), f.card))
	return f
}

func (f *checkoutFixture) request() CheckoutRequest {
	return CheckoutRequest{
		ShippingAddress: address,
		Payment:         PaymentSelection{Type: models.PaymentCard, MethodID: f.card.ID},
	}
}

func TestCheckout_PlacesOrder(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	shirt := addProduct(t, f.store, "Linen Shirt", 10)
	coat := addProduct(t, f.store, "Wool Coat", 90.5)
	_, err := f.cart.Add(ctx, buyer, shirt.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, buyer, coat.ID, 1)
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, buyer, f.request())
	require.NoError(t, err)

	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.Equal(t, 110.5, order.TotalAmount)
	require.Len(t, order.TrackingHistory, 1)
	assert.Equal(t, "Order has been placed", order.TrackingHistory[0].Description)
	assert.Equal(t, "4242", order.PaymentMethod.Last4)
	assert.NotEmpty(t, order.PaymentRef)
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		assert.Equal(t, item.ProductName+".jpg", item.Image)
	}

	cart, err := f.cart.Get(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	sold, err := f.store.Products().GetByID(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductSold, sold.Status)

	require.Equal(t, []string{EventOrderPlaced}, f.publisher.keys())
	var ev OrderEvent
	require.NoError(t, json.Unmarshal(f.publisher.events[0].body, &ev))
	assert.Equal(t, order.ID, ev.OrderID)
	assert.Equal(t, buyer, ev.BuyerEmail)
}

func TestCheckout_SnapshotSurvivesProductEdit(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	shirt := addProduct(t, f.store, "Linen Shirt", 10)
	_, err := f.cart.Add(ctx, buyer, shirt.ID, 1)
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, buyer, f.request())
	require.NoError(t, err)

	shirt.Name = "Renamed"
	shirt.Price = 99
	require.NoError(t, f.store.Products().Update(ctx, shirt))

	got, err := f.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", got.Items[0].ProductName)
	assert.Equal(t, 10.0, got.Items[0].Price)
}

func TestCheckout_AppliesCoupon(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	coat := addProduct(t, f.store, "Wool Coat", 80)
	_, err := f.cart.Add(ctx, buyer, coat.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.store.Coupons().Create(ctx, &models.Coupon{Code: "SAVE15", DiscountPercentage: 15, IsActive: true, MaxUses: 1}))

	req := f.request()
	req.CouponCode = "save15"
	order, err := f.checkout.Checkout(ctx, buyer, req)
	require.NoError(t, err)
	assert.Equal(t, 80.0, order.Subtotal)
	assert.Equal(t, 12.0, order.Discount)
	assert.Equal(t, 68.0, order.TotalAmount)
	assert.Equal(t, "SAVE15", order.CouponCode)

	coupon, err := f.store.Coupons().GetByCode(ctx, "SAVE15")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)
}

func TestCheckout_FailuresLeaveCartUntouched(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		prepare func(t *testing.T, f *checkoutFixture, req *CheckoutRequest)
		want    error
	}{
		{
			name: "payment declined",
			prepare: func(t *testing.T, f *checkoutFixture, req *CheckoutRequest) {
				declined := &models.PaymentMethod{UserEmail: buyer, Type: models.PaymentCard, Last4: DeclinedCardLast4}
				require.NoError(t, f.store.PaymentMethods().Create(ctx, declined))
				req.Payment.MethodID = declined.ID
			},
			want: ErrPaymentDeclined,
		},
		{
			name: "someone else's payment method",
			prepare: func(t *testing.T, f *checkoutFixture, req *CheckoutRequest) {
				other := &models.PaymentMethod{UserEmail: "bob@example.com", Type: models.PaymentCard, Last4: "1111"}
				require.NoError(t, f.store.PaymentMethods().Create(ctx, other))
				req.Payment.MethodID = other.ID
			},
			want: ErrNotFound,
		},
		{
			name: "card without method",
			prepare: func(_ *testing.T, _ *checkoutFixture, req *CheckoutRequest) {
				req.Payment.MethodID = ""
			},
			want: ErrInvalidInput,
		},
		{
			name: "exhausted coupon",
			prepare: func(t *testing.T, f *checkoutFixture, req *CheckoutRequest) {
				require.NoError(t, f.store.Coupons().Create(ctx, &models.Coupon{Code: "USED", DiscountPercentage: 10, IsActive: true, MaxUses: 1, UsedCount: 1}))
				req.CouponCode = "USED"
			},
			want: ErrCouponInvalid,
		},
		{
			name: "product no longer approved",
			prepare: func(t *testing.T, f *checkoutFixture, req *CheckoutRequest) {
				items, err := f.store.Carts().GetItems(ctx, buyer)
				require.NoError(t, err)
				for _, item := range items {
					p, err := f.store.Products().GetByID(ctx, item.ProductID)
					require.NoError(t, err)
					if p.Name == "Linen Shirt" {
						require.NoError(t, f.store.Products().SetStatus(ctx, models.ProductApproved, models.ProductRejected, p.ID))
					}
				}
			},
			want: ErrProductUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			shirt := addProduct(t, f.store, "Linen Shirt", 10)
			coat := addProduct(t, f.store, "Wool Coat", 90)
			_, err := f.cart.Add(ctx, buyer, shirt.ID, 1)
			require.NoError(t, err)
			_, err = f.cart.Add(ctx, buyer, coat.ID, 1)
			require.NoError(t, err)
			before, err := f.store.Carts().GetItems(ctx, buyer)
			require.NoError(t, err)

			req := f.request()
			tc.prepare(t, f, &req)

			_, err = f.checkout.Checkout(ctx, buyer, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)

			after, err := f.store.Carts().GetItems(ctx, buyer)
			require.NoError(t, err)
			assert.Equal(t, before, after)

			got, err := f.store.Products().GetByID(ctx, coat.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ProductApproved, got.Status)

			orders, err := f.store.Orders().ListByBuyer(ctx, buyer)
			require.NoError(t, err)
			assert.Empty(t, orders)
			assert.Empty(t, f.publisher.keys())
		})
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.checkout.Checkout(context.Background(), buyer, f.request())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_CashNeedsNoStoredMethod(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	shirt := addProduct(t, f.store, "Linen Shirt", 10)
	_, err := f.cart.Add(ctx, buyer, shirt.ID, 1)
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, buyer, CheckoutRequest{
		ShippingAddress: address,
		Payment:         PaymentSelection{Type: models.PaymentCash},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, order.PaymentMethod.Type)
}

func TestCheckout_LosesRaceForSoldItem(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	shirt := addProduct(t, f.store, "Linen Shirt", 10)
	_, err := f.cart.Add(ctx, buyer, shirt.ID, 1)
	require.NoError(t, err)

	// another buyer's checkout commits first; this one still reads approved
	require.NoError(t, f.store.Products().SetStatus(ctx, models.ProductApproved, models.ProductSold, shirt.ID))
	racing := &racingStore{Store: f.store, staleProduct: func(p *models.Product) { p.Status = models.ProductApproved }}
	checkout := NewCheckoutService(racing, SimulatedGateway{}, NewDispatcher(f.publisher, nil))
	checkout.now = f.checkout.now

	_, err = checkout.Checkout(ctx, buyer, f.request())
	assert.ErrorIs(t, err, ErrProductUnavailable)

	items, err := f.store.Carts().GetItems(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	orders, err := f.store.Orders().ListByBuyer(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_LosesRaceForLastCouponUse(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	shirt := addProduct(t, f.store, "Linen Shirt", 10)
	_, err := f.cart.Add(ctx, buyer, shirt.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.store.Coupons().Create(ctx, &models.Coupon{Code: "LAST", DiscountPercentage: 50, IsActive: true, MaxUses: 1, UsedCount: 1}))

	// the competing redemption already counted; this checkout read the coupon before it did
	racing := &racingStore{Store: f.store, staleCoupon: func(c *models.Coupon) { c.UsedCount = 0 }}
	checkout := NewCheckoutService(racing, SimulatedGateway{}, NewDispatcher(f.publisher, nil))
	checkout.now = f.checkout.now

	req := f.request()
	req.CouponCode = "LAST"
	_, err = checkout.Checkout(ctx, buyer, req)
	assert.ErrorIs(t, err, ErrCouponInvalid)

	coupon, err := f.store.Coupons().GetByCode(ctx, "LAST")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)
	got, err := f.store.Products().GetByID(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductApproved, got.Status)
}
