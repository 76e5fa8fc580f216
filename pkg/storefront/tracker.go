package storefront

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"rewear/internal/models"
)

const DefaultPollInterval = 30 * time.Second

// Update is one applied poll result. Seq increases with every poll issued.
type Update struct {
	Seq   uint64
	Order *models.Order
	Err   error
}

type pollResult struct {
	seq   uint64
	order *models.Order
	err   error
}

// Tracker polls an order until it reaches a terminal status or is stopped.
// Responses older than the last applied one are dropped, so a slow request
// can never roll the status back.
type Tracker struct {
	client   *Client
	orderID  string
	interval time.Duration

	updates chan Update
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	issued  uint64
	applied uint64
}

// Track starts polling orderID. An interval of zero means DefaultPollInterval.
func (c *Client) Track(ctx context.Context, orderID string, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Tracker{
		client:   c,
		orderID:  orderID,
		interval: interval,
		updates:  make(chan Update, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

// Updates is closed once tracking ends.
func (t *Tracker) Updates() <-chan Update { return t.updates }

// Stop ends tracking and cancels any request in flight.
func (t *Tracker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	defer close(t.updates)
	defer t.once.Do(t.cancel)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	results := make(chan pollResult)
	t.poll(ctx, results)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.poll(ctx, results)
		case r := <-results:
			if r.seq <= t.applied {
				continue
			}
			t.applied = r.seq
			select {
			case t.updates <- Update{Seq: r.seq, Order: r.order, Err: r.err}:
			case <-ctx.Done():
				return
			}
			if r.err == nil && r.order.Status.IsTerminal() {
				return
			}
		}
	}
}

func (t *Tracker) poll(ctx context.Context, results chan<- pollResult) {
	t.issued++
	seq := t.issued
	go func() {
		var order models.Order
		err := t.client.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(t.orderID), nil, &order)
		r := pollResult{seq: seq, err: err}
		if err == nil {
			r.order = &order
		}
		select {
		case results <- r:
		case <-ctx.Done():
		}
	}()
}

// Actions are the order buttons a client may enable.
type Actions struct {
	Track  bool `json:"track"`
	Cancel bool `json:"cancel"`
	Return bool `json:"return"`
}

// OrderActions derives the enabled actions from the order status.
func OrderActions(status models.OrderStatus) Actions {
	return Actions{
		Track:  status.Valid() && !status.IsTerminal(),
		Cancel: status.CanTransition(models.OrderCancelled),
		Return: status.CanTransition(models.OrderReturnRequested),
	}
}
