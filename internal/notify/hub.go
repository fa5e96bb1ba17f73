package notify

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event names pushed to the review/chat frontend. Delivery is best-effort
// and at-most-once; clients re-derive state from the pending list when a
// frame is missed.
const (
	EventItemsReady        = "items_ready"
	EventDecisionProcessed = "decision_processed"
	EventSessionComplete   = "session_complete"
	EventResponseMode      = "agent_response_mode"
)

type ItemsReadyPayload struct {
	OwnerID string `json:"owner_id"`
	Count   int    `json:"count"`
}

type DecisionProcessedPayload struct {
	ItemID uint   `json:"item_id"`
	Result string `json:"result"`
}

type SessionCompletePayload struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type ResponseModePayload struct {
	Mode    string `json:"mode"`
	Message string `json:"message"`
}

type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Notifier is the fire-and-forget channel consumed by the orchestrator and
// the review session. It is a delivery address, never application state.
type Notifier interface {
	Emit(ownerID string, event string, data any)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes to the conn
}

// Hub maps an owner id to its live websocket connection. Populated on
// connect, removed on disconnect.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

func (h *Hub) register(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	old := h.clients[ownerID]
	h.clients[ownerID] = &client{conn: conn}
	h.mu.Unlock()

	if old != nil {
		old.conn.Close()
	}
	log.Info().Str("ownerID", ownerID).Msg("Websocket client connected")
}

func (h *Hub) unregister(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	if cl, ok := h.clients[ownerID]; ok && cl.conn == conn {
		delete(h.clients, ownerID)
	}
	h.mu.Unlock()
	log.Info().Str("ownerID", ownerID).Msg("Websocket client disconnected")
}

// Emit sends one event frame to the owner's connection, if any. Failures
// are logged and dropped.
func (h *Hub) Emit(ownerID string, event string, data any) {
	h.mu.RLock()
	cl := h.clients[ownerID]
	h.mu.RUnlock()

	if cl == nil {
		log.Debug().Str("ownerID", ownerID).Str("event", event).Msg("No websocket client, dropping event")
		return
	}

	cl.mu.Lock()
	err := cl.conn.WriteJSON(frame{Event: event, Data: data})
	cl.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Str("ownerID", ownerID).Str("event", event).Msg("Failed to push event")
	}
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away. The read loop only watches for close/ping.
func (h *Hub) HandleWS(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade to websocket")
		return
	}

	h.register(ownerID, conn)
	defer func() {
		h.unregister(ownerID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("ownerID", ownerID).Msg("Websocket read error")
			}
			return
		}
	}
}
