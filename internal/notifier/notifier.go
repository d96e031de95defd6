package notifier

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/booknest/booknest/pkg/logger"
	"github.com/booknest/booknest/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type EventType string

const (
	EventBookCreated        EventType = "book_created"
	EventBookUpdated        EventType = "book_updated"
	EventBookDeleted        EventType = "book_deleted"
	EventListUpdated        EventType = "list_updated"
	EventAssociationUpdated EventType = "association_updated"
)

// Event is the JSON frame pushed to every connected subscriber. The feed is
// outbound only; inbound frames are read and discarded.
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans catalog-change events out to websocket subscribers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *logger.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     logger.GetLogger().WithContext("component", "notifier"),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and registers the connection as a subscriber.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws_upgrade_failed", "error", err.Error())
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	metrics.SetActiveEventSubscribers(int64(len(h.clients)))
	h.mu.Unlock()

	go h.writePump(cl)
	go h.readPump(cl)
}

// Publish marshals the event and queues it for every subscriber. A subscriber
// whose queue is full is dropped. Safe to call on a nil hub.
func (h *Hub) Publish(eventType EventType, payload interface{}) {
	if h == nil {
		return
	}

	data, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			delete(h.clients, cl)
			close(cl.send)
			cl.conn.Close()
		}
	}
	metrics.SetActiveEventSubscribers(int64(len(h.clients)))
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) writePump(cl *client) {
	for data := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	cl.conn.Close()
}

// readPump discards inbound frames and detaches the client when the
// connection drops.
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[cl]; ok {
			delete(h.clients, cl)
			close(cl.send)
		}
		metrics.SetActiveEventSubscribers(int64(len(h.clients)))
		h.mu.Unlock()
		cl.conn.Close()
	}()

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
