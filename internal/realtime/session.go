package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// JoinAuthorizer verifies the token carried on a join control message and
// reports whether its bearer may enter the admin room.
type JoinAuthorizer func(token string) error

// Session is one connected websocket client. Outbound frames flow through a
// buffered channel drained by the write pump, so Publish never writes to the
// socket directly.
type Session struct {
	ID uuid.UUID

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	authorize JoinAuthorizer
	logger    *zap.Logger
	closeOnce sync.Once

	// closed is guarded by the hub mutex.
	closed bool
}

// ServeConn runs a session over an upgraded connection until it disconnects.
// It blocks; the caller owns the goroutine.
func (h *Hub) ServeConn(conn *websocket.Conn, authorize JoinAuthorizer) {
	s := &Session{
		ID:        uuid.New(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		authorize: authorize,
		logger:    h.logger,
	}
	go s.writePump()
	s.readPump()
}

// Close tears the session down: membership is removed from every room and
// the socket is closed. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.hub.detach(s)
		s.conn.Close()
	})
}

// readPump consumes control messages until the connection drops. The only
// control message is the room join; everything else is ignored.
func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("session read error", zap.String("session", s.ID.String()), zap.Error(err))
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Debug("discarding malformed frame", zap.String("session", s.ID.String()))
			continue
		}

		if msg.Event == EventJoinAdminOrders {
			s.handleJoin(msg)
		}
	}
}

// handleJoin admits the session to the admin room only when the join token
// verifies as an admin. A rejected join leaves the connection open but
// unsubscribed.
func (s *Session) handleJoin(msg Envelope) {
	if err := s.authorize(msg.Token); err != nil {
		s.logger.Warn("rejected admin room join",
			zap.String("session", s.ID.String()),
			zap.Error(err))
		s.reply("join-rejected", map[string]string{"error": "admin access required"})
		return
	}
	s.hub.Join(RoomAdminOrders, s)
	s.reply("join-accepted", map[string]string{"room": RoomAdminOrders})
}

// reply queues a frame for this session only.
func (s *Session) reply(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	s.hub.trySend(s, frame)
}

// writePump drains the send channel onto the socket and keeps the connection
// alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
