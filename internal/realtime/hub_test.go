package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mealmart/internal/models"
)

const testAdminToken = "admin-token"

func adminOnly(token string) error {
	if token != testAdminToken {
		return errors.New("admin access required")
	}
	return nil
}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.ServeConn(conn, adminOnly)
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Envelope
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func join(t *testing.T, conn *websocket.Conn, token string) Envelope {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Envelope{Event: EventJoinAdminOrders, Token: token}))
	return readEnvelope(t, conn)
}

func TestJoinThenReceive(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)

	reply := join(t, conn, testAdminToken)
	assert.Equal(t, "join-accepted", reply.Event)

	require.Eventually(t, func() bool { return hub.RoomSize(RoomAdminOrders) == 1 },
		2*time.Second, 10*time.Millisecond)

	order := &models.Order{ID: 7, Status: models.OrderPending}
	require.NoError(t, hub.Publish(RoomAdminOrders, EventNewOrder, order))

	msg := readEnvelope(t, conn)
	assert.Equal(t, EventNewOrder, msg.Event)

	var got models.Order
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, models.OrderPending, got.Status)
}

func TestNoDeliveryBeforeJoin(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)

	require.NoError(t, hub.Publish(RoomAdminOrders, EventNewOrder, &models.Order{ID: 1}))

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg Envelope
	err := conn.ReadJSON(&msg)
	assert.Error(t, err, "a session that never joined must not receive room events")
}

func TestJoinRejectedForNonAdminToken(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)

	reply := join(t, conn, "not-an-admin")
	assert.Equal(t, "join-rejected", reply.Event)
	assert.Equal(t, 0, hub.RoomSize(RoomAdminOrders))

	// the connection survives the rejection and can retry
	reply = join(t, conn, testAdminToken)
	assert.Equal(t, "join-accepted", reply.Event)
}

func TestFanOutToAllJoinedSessions(t *testing.T) {
	hub, server := newTestHub(t)
	first := dialHub(t, server)
	second := dialHub(t, server)

	join(t, first, testAdminToken)
	join(t, second, testAdminToken)
	require.Eventually(t, func() bool { return hub.RoomSize(RoomAdminOrders) == 2 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(RoomAdminOrders, EventOrderDeleted, int64(3)))

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readEnvelope(t, conn)
		assert.Equal(t, EventOrderDeleted, msg.Event)
		var id int64
		require.NoError(t, json.Unmarshal(msg.Data, &id))
		assert.Equal(t, int64(3), id)
	}
}

func TestDisconnectLeavesRoom(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server)

	join(t, conn, testAdminToken)
	require.Eventually(t, func() bool { return hub.RoomSize(RoomAdminOrders) == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(RoomAdminOrders) == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestPublishToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.NoError(t, hub.Publish(RoomAdminOrders, EventNewOrder, &models.Order{ID: 1}))
}

func TestPublishRejectsUnencodablePayload(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.Error(t, hub.Publish(RoomAdminOrders, EventNewOrder, make(chan int)))
}
