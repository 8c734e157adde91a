package realtime

import (
	"sync"

	"mealmart/internal/models"
)

// OrderFeed is the admin dashboard's local materialization of the order list.
// The keyed map is the source of truth; the id slice keeps a newest-first
// presentation order. Keeping the map keyed by id means a re-delivered
// new-order event replaces the existing entry instead of duplicating it.
type OrderFeed struct {
	mu     sync.RWMutex
	orders map[int64]*models.Order
	ids    []int64
}

func NewOrderFeed() *OrderFeed {
	return &OrderFeed{orders: make(map[int64]*models.Order)}
}

// ApplyNew prepends the order. If the id is already present the entry is
// replaced in place, preserving its position.
func (f *OrderFeed) ApplyNew(order *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.ID]; ok {
		f.orders[order.ID] = order
		return
	}
	f.orders[order.ID] = order
	f.ids = append([]int64{order.ID}, f.ids...)
}

// ApplyUpdate replaces the matching entry; an update for an unknown id is
// silently dropped, never inserted.
func (f *OrderFeed) ApplyUpdate(order *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.ID]; !ok {
		return
	}
	f.orders[order.ID] = order
}

// ApplyDelete removes the matching entry. Deleting an absent id is a no-op.
func (f *OrderFeed) ApplyDelete(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return
	}
	delete(f.orders, id)
	for i, existing := range f.ids {
		if existing == id {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			break
		}
	}
}

// Replace swaps the entire feed contents for the given list, keeping the
// list's order. Used for the full resync after a reconnect.
func (f *OrderFeed) Replace(orders []*models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = make(map[int64]*models.Order, len(orders))
	f.ids = make([]int64, 0, len(orders))
	for _, order := range orders {
		if _, ok := f.orders[order.ID]; ok {
			continue
		}
		f.orders[order.ID] = order
		f.ids = append(f.ids, order.ID)
	}
}

// Snapshot returns the current view, newest first.
func (f *OrderFeed) Snapshot() []*models.Order {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*models.Order, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, f.orders[id])
	}
	return out
}

// Len reports the number of orders in the feed.
func (f *OrderFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Get looks up one order by id.
func (f *OrderFeed) Get(id int64) (*models.Order, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	order, ok := f.orders[id]
	return order, ok
}
