package notify

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	router := gin.New()
	router.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialWS(t *testing.T, srv *httptest.Server, ownerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?owner_id=" + ownerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitRegistered(t *testing.T, hub *Hub, ownerID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[ownerID] != nil
	}, time.Second, 10*time.Millisecond)
}

func TestHub_EmitDeliversFrameToConnectedOwner(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialWS(t, srv, "alice")
	waitRegistered(t, hub, "alice")

	hub.Emit("alice", EventItemsReady, ItemsReadyPayload{OwnerID: "alice", Count: 3})

	var got struct {
		Event string `json:"event"`
		Data  struct {
			OwnerID string `json:"owner_id"`
			Count   int    `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, EventItemsReady, got.Event)
	require.Equal(t, "alice", got.Data.OwnerID)
	require.Equal(t, 3, got.Data.Count)
}

func TestHub_EmitToUnknownOwnerIsDropped(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialWS(t, srv, "alice")
	waitRegistered(t, hub, "alice")

	hub.Emit("bob", EventSessionComplete, SessionCompletePayload{Total: 1})

	// Alice must not receive Bob's frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestHub_ReconnectReplacesOldConnection(t *testing.T) {
	hub, srv := newHubServer(t)
	dialWS(t, srv, "alice")
	waitRegistered(t, hub, "alice")

	hub.mu.RLock()
	first := hub.clients["alice"]
	hub.mu.RUnlock()

	second := dialWS(t, srv, "alice")
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients["alice"] != nil && hub.clients["alice"] != first
	}, time.Second, 10*time.Millisecond)

	hub.Emit("alice", EventDecisionProcessed, DecisionProcessedPayload{ItemID: 42, Result: "approved"})

	var got frame
	require.NoError(t, second.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, second.ReadJSON(&got))
	require.Equal(t, EventDecisionProcessed, got.Event)
}

func TestHandleWS_RequiresOwnerID(t *testing.T) {
	_, srv := newHubServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.Equal(t, 400, resp.StatusCode)
}
