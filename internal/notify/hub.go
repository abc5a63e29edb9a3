package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"event-ticketing/internal/ticketing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	eventID uint64 // 0 streams every event
}

// Hub streams notifications to websocket clients
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub. Browsers may connect only from
// allowedOrigins; requests without an Origin header are not browsers and
// are accepted.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSuffix(origin, "/")] = struct{}{}
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				log.Printf("[Hub] Rejected websocket from origin %q", origin)
				return false
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast queues env for every matching client. It never blocks;
// clients whose buffer is full are disconnected.
func (h *Hub) Broadcast(env ticketing.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[Hub] Failed to marshal notification seq=%d: %v", env.Seq, err)
		return
	}

	eventID := env.Notification.EventID()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.eventID != 0 && c.eventID != eventID {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

// ServeWS upgrades the request and streams notifications until the client goes away.
// GET /api/stream?event_id=N
func (h *Hub) ServeWS(c *gin.Context) {
	var eventID uint64
	if raw := c.Query("event_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id", "code": "invalid_request"})
			return
		}
		eventID = id
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Hub] WebSocket upgrade failed: %v", err)
		return
	}

	cl := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer), eventID: eventID}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	log.Printf("[Hub] Client %s connected (event_id=%d)", cl.id, eventID)

	go cl.writeLoop()

	// Keep reading so close frames are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.drop(cl)
	h.mu.Unlock()
	log.Printf("[Hub] Client %s disconnected", cl.id)
}

// drop must be called with h.mu held
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
