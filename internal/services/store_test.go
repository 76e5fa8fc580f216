package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"rewear/internal/mailer"
	"rewear/internal/models"
	"rewear/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repositories.GORMStore {
	t.Helper()
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return repositories.NewGORMStore(db)
}

func addProduct(t *testing.T, store repositories.Store, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID: "seller-1",
		Name:     name,
		Price:    price,
		Category: "Jackets",
		Images:   []string{name + ".jpg"},
		Status:   models.ProductApproved,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

type capturedEvent struct {
	key  string
	body []byte
}

// fakePublisher records what would have gone to the broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, capturedEvent{key: key, body: body})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var keys []string
	for _, e := range p.events {
		keys = append(keys, e.key)
	}
	return keys
}

type nopMailer struct{}

func (nopMailer) Send(context.Context, mailer.Message) error { return nil }

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// racingStore runs a competing writer between a read and the write that
// depends on it. Reads made through it inside transactions return the state
// the competing writer has already replaced.
type racingStore struct {
	repositories.Store
	afterList    func()
	staleProduct func(*models.Product)
	staleCoupon  func(*models.Coupon)
}

func (s *racingStore) Orders() repositories.OrderRepository {
	return &racingOrders{OrderRepository: s.Store.Orders(), afterList: s.afterList}
}

func (s *racingStore) Products() repositories.ProductRepository {
	return &racingProducts{ProductRepository: s.Store.Products(), stale: s.staleProduct}
}

func (s *racingStore) Coupons() repositories.CouponRepository {
	return &racingCoupons{CouponRepository: s.Store.Coupons(), stale: s.staleCoupon}
}

func (s *racingStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(&racingStore{Store: tx, staleProduct: s.staleProduct, staleCoupon: s.staleCoupon})
	})
}

type racingOrders struct {
	repositories.OrderRepository
	afterList func()
}

func (r *racingOrders) ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	orders, err := r.OrderRepository.ListByStatus(ctx, statuses...)
	if err == nil && r.afterList != nil {
		r.afterList()
	}
	return orders, err
}

type racingProducts struct {
	repositories.ProductRepository
	stale func(*models.Product)
}

func (r *racingProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id)
	if err == nil && r.stale != nil {
		r.stale(p)
	}
	return p, err
}

type racingCoupons struct {
	repositories.CouponRepository
	stale func(*models.Coupon)
}

func (r *racingCoupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := r.CouponRepository.GetByCode(ctx, code)
	if err == nil && r.stale != nil {
		r.stale(c)
	}
	return c, err
}
