package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rewear/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderServer(t *testing.T, respond func(n int64, w http.ResponseWriter, r *http.Request)) (*Client, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		respond(n, w, r)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, srv.Client())
	client.SetToken("tok")
	return client, &calls
}

func writeOrder(w http.ResponseWriter, status models.OrderStatus) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.Order{ID: "o1", Status: status})
}

func collect(t *testing.T, updates <-chan Update) []Update {
	t.Helper()
	var got []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return got
			}
			got = append(got, u)
		case <-timeout:
			t.Fatal("tracker did not finish")
			return got
		}
	}
}

func TestTrackerStopsAtTerminalStatus(t *testing.T) {
	client, calls := orderServer(t, func(n int64, w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/o1", r.URL.Path)
		if n < 3 {
			writeOrder(w, models.OrderInTransit)
			return
		}
		writeOrder(w, models.OrderDelivered)
	})

	tracker := client.Track(context.Background(), "o1", 10*time.Millisecond)
	got := collect(t, tracker.Updates())

	require.NotEmpty(t, got)
	assert.Equal(t, models.OrderDelivered, got[len(got)-1].Order.Status)
	for _, u := range got[:len(got)-1] {
		assert.Equal(t, models.OrderInTransit, u.Order.Status)
	}

	time.Sleep(30 * time.Millisecond)
	seen := atomic.LoadInt64(calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, atomic.LoadInt64(calls), "no polling after a terminal status")
}

func TestTrackerDropsStaleResponses(t *testing.T) {
	release := make(chan struct{})
	var staleSent atomic.Bool
	client, _ := orderServer(t, func(n int64, w http.ResponseWriter, r *http.Request) {
		switch {
		case n == 1:
			// The first poll is slow and reports an older status.
			select {
			case <-release:
			case <-r.Context().Done():
			}
			writeOrder(w, models.OrderPlaced)
			staleSent.Store(true)
		case staleSent.Load():
			writeOrder(w, models.OrderCancelled)
		default:
			writeOrder(w, models.OrderShipped)
		}
	})

	tracker := client.Track(context.Background(), "o1", 20*time.Millisecond)
	var first Update
	select {
	case first = <-tracker.Updates():
	case <-time.After(5 * time.Second):
		t.Fatal("no update")
	}
	require.NoError(t, first.Err)
	assert.Equal(t, models.OrderShipped, first.Order.Status)
	assert.Greater(t, first.Seq, uint64(1))

	close(release)
	got := append([]Update{first}, collect(t, tracker.Updates())...)

	last := uint64(0)
	for _, u := range got {
		require.NoError(t, u.Err)
		assert.NotEqual(t, models.OrderPlaced, u.Order.Status, "stale response applied")
		assert.Greater(t, u.Seq, last)
		last = u.Seq
	}
	assert.Equal(t, models.OrderCancelled, got[len(got)-1].Order.Status)
}

func TestTrackerStopCancelsInFlightRequest(t *testing.T) {
	cancelled := make(chan struct{})
	client, _ := orderServer(t, func(n int64, w http.ResponseWriter, r *http.Request) {
		if n == 1 {
			<-r.Context().Done()
			close(cancelled)
			return
		}
		<-r.Context().Done()
	})

	tracker := client.Track(context.Background(), "o1", time.Hour)
	time.Sleep(20 * time.Millisecond)
	tracker.Stop()

	_, open := <-tracker.Updates()
	assert.False(t, open)
	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
}

func TestTrackDefaultInterval(t *testing.T) {
	client, _ := orderServer(t, func(n int64, w http.ResponseWriter, r *http.Request) {
		writeOrder(w, models.OrderReturned)
	})
	tracker := client.Track(context.Background(), "o1", 0)
	assert.Equal(t, DefaultPollInterval, tracker.interval)
	got := collect(t, tracker.Updates())
	require.Len(t, got, 1)
	assert.Equal(t, models.OrderReturned, got[0].Order.Status)
}

func TestOrderActions(t *testing.T) {
	cases := []struct {
		status models.OrderStatus
		want   Actions
	}{
		{models.OrderPlaced, Actions{Track: true, Cancel: true}},
		{models.OrderShipped, Actions{Track: true, Cancel: true}},
		{models.OrderInTransit, Actions{Track: true, Cancel: true}},
		{models.OrderDelivered, Actions{Return: true}},
		{models.OrderCancelled, Actions{}},
		{models.OrderReturnRequested, Actions{Track: true}},
		{models.OrderReturned, Actions{}},
		{models.OrderStatus("lost"), Actions{}},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.want, OrderActions(tc.status))
		})
	}
}
