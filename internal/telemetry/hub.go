package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/litescript/ls-lander/internal/logging"
)

// Message types sent over the websocket.
const (
	TypeFrame = "frame"
	TypeEvent = "event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 64
	broadcastQueue = 256
)

// Message is the JSON envelope for everything sent to clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Sender  string `json:"sender"`
}

// client is one websocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	count   atomic.Int64
	dropped atomic.Uint64
	sender  string
	log     *logging.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(sender string, log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		sender:     sender,
		log:        log,
	}
}

// Run dispatches registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int64(len(h.clients)))
			h.log.Debug("ws client connected (%d total)", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
				h.log.Debug("ws client disconnected (%d total)", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer.
					close(c.send)
					delete(h.clients, c)
					h.count.Store(int64(len(h.clients)))
				}
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Dropped returns how many messages were discarded because the queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Publish queues a message for every client without blocking. It reports
// false when the message could not be encoded or the queue was full.
func (h *Hub) Publish(msgType string, payload any) bool {
	b, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: h.sender})
	if err != nil {
		h.log.Warn("encode %s message: %v", msgType, err)
		return false
	}
	select {
	case h.broadcast <- b:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade: %v", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound messages and keeps the read deadline fresh.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("ws read: %v", err)
			}
			return
		}
	}
}

// writePump sends queued messages and periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
