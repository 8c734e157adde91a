package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// RoomAdminOrders is the room that receives order life-cycle events.
const RoomAdminOrders = "admin-orders"

// Order domain events fanned out on RoomAdminOrders.
const (
	EventNewOrder     = "new-order"
	EventOrderUpdated = "order-updated"
	EventOrderDeleted = "order-deleted"
)

// EventJoinAdminOrders is the client-to-hub control message requesting
// membership in RoomAdminOrders. It must carry an admin-verified token.
const EventJoinAdminOrders = "join-admin-orders"

// Envelope is the wire frame for both directions: domain events going out and
// control messages coming in.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Token string          `json:"token,omitempty"`
}

// Hub is a process-wide, room-scoped broadcast channel. It is constructed
// once by the composition root and handed to the order service as a
// Broadcaster; it holds no state beyond live room memberships, so a restart
// simply empties every room.
//
// Delivery is at-most-once per joined session per Publish. Events published
// while a session is disconnected are lost; clients are expected to resync
// after reconnecting.
type Hub struct {
	logger *zap.Logger

	mu    sync.RWMutex
	rooms map[string]map[*Session]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[*Session]struct{}),
	}
}

// Join adds s to room. Until a session joins a room it receives none of the
// room's events.
func (h *Hub) Join(room string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	h.logger.Info("session joined room",
		zap.String("room", room),
		zap.String("session", s.ID.String()))
}

// Publish delivers the event to every session currently joined to room. A
// session whose outbound buffer is full is disconnected rather than allowed
// to block the publisher. The returned error covers payload encoding only;
// per-session delivery is best-effort and never reported.
func (h *Hub) Publish(room, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}

	// Sends happen under the read lock: detach closes the send channel
	// under the write lock, so a frame can never race a channel close.
	h.mu.RLock()
	var slow []*Session
	for s := range h.rooms[room] {
		select {
		case s.send <- frame:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.logger.Warn("dropping slow session",
			zap.String("room", room),
			zap.String("session", s.ID.String()))
		s.Close()
	}
	return nil
}

// RoomSize reports the current number of sessions joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// detach silently drops s from every room and closes its send channel. Called
// from the session teardown path; no explicit leave message is required of
// clients.
func (h *Hub) detach(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		if _, ok := members[s]; ok {
			delete(members, s)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	s.closed = true
	close(s.send)
}

// trySend queues a frame for a single session, dropping it when the session
// is closing or its buffer is full.
func (h *Hub) trySend(s *Session, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.send <- frame:
	default:
	}
}
