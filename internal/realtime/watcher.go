package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mealmart/internal/models"
)

// FetchFunc loads the authoritative order list for a full resync.
type FetchFunc func(ctx context.Context) ([]*models.Order, error)

// Watcher is the admin session client: it keeps an OrderFeed consistent with
// the hub's event stream. Because events published while disconnected are
// lost, every (re)connect is followed by a full resync through fetch.
type Watcher struct {
	url    string
	token  string
	feed   *OrderFeed
	fetch  FetchFunc
	logger *zap.Logger
	dialer *websocket.Dialer

	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewWatcher(url, token string, feed *OrderFeed, fetch FetchFunc, logger *zap.Logger) *Watcher {
	return &Watcher{
		url:         url,
		token:       token,
		feed:        feed,
		fetch:       fetch,
		logger:      logger,
		dialer:      websocket.DefaultDialer,
		maxAttempts: 5,
		baseBackoff: time.Second,
		maxBackoff:  5 * time.Second,
	}
}

// Run connects and consumes events until ctx is cancelled or the reconnect
// attempts run out. A session that makes it through join and resync resets
// the attempt count, so only consecutive failures exhaust it. Once it is
// exhausted the feed stays frozen at its last state; only a fresh Run
// resynchronizes it.
func (w *Watcher) Run(ctx context.Context) error {
	attempts := 0
	for {
		synced, err := w.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if synced {
			attempts = 0
		}
		attempts++
		if attempts > w.maxAttempts {
			return fmt.Errorf("giving up after %d reconnect attempts: %w", w.maxAttempts, err)
		}
		backoff := w.backoff(attempts)
		w.logger.Warn("connection lost, reconnecting",
			zap.Int("attempt", attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) backoff(attempt int) time.Duration {
	d := w.baseBackoff * time.Duration(attempt)
	if d > w.maxBackoff {
		d = w.maxBackoff
	}
	return d
}

// runOnce performs one connect-join-resync-consume cycle. synced reports
// whether the session got as far as a completed resync.
func (w *Watcher) runOnce(ctx context.Context) (synced bool, err error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Envelope{Event: EventJoinAdminOrders, Token: w.token}); err != nil {
		return false, fmt.Errorf("join: %w", err)
	}

	// Resync before consuming: events published between the join and the
	// fetch are re-applied on top of the fresh snapshot, which the keyed
	// feed absorbs without duplicates.
	orders, err := w.fetch(ctx)
	if err != nil {
		return false, fmt.Errorf("resync: %w", err)
	}
	w.feed.Replace(orders)
	w.logger.Info("feed synchronized", zap.Int("orders", len(orders)))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg Envelope
		if err := conn.ReadJSON(&msg); err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		w.dispatch(msg)
	}
}

// dispatch applies one event to the feed in arrival order.
func (w *Watcher) dispatch(msg Envelope) {
	switch msg.Event {
	case EventNewOrder:
		var order models.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			w.logger.Warn("malformed new-order payload", zap.Error(err))
			return
		}
		w.feed.ApplyNew(&order)
	case EventOrderUpdated:
		var order models.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			w.logger.Warn("malformed order-updated payload", zap.Error(err))
			return
		}
		w.feed.ApplyUpdate(&order)
	case EventOrderDeleted:
		var id int64
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			w.logger.Warn("malformed order-deleted payload", zap.Error(err))
			return
		}
		w.feed.ApplyDelete(id)
	case "join-rejected":
		w.logger.Error("admin room join rejected")
	}
}
