package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/sirupsen/logrus"
)

// Board events.
const (
	ItemCreated      = "item.created"
	ItemUpdated      = "item.updated"
	ItemDeleted      = "item.deleted"
	SnapshotCaptured = "snapshot.captured"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	bufferSize = 64
)

type (
	// An Event is a change on the board broadcasted to all the listeners.
	Event struct {
		Type string      `json:"event"`
		Item *model.Item `json:"item,omitempty"`
		ID   string      `json:"id,omitempty"`
		Date string      `json:"date,omitempty"`
	}

	// A Hub broadcasts board events to websocket listeners.
	Hub struct {
		logger   logrus.FieldLogger
		upgrader websocket.Upgrader

		mu      sync.Mutex
		clients map[*client]struct{}
		closed  bool
	}

	client struct {
		conn *websocket.Conn
		send chan Event
	}
)

// NewHub returns a new Hub.
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The board is meant to be shared on a LAN by browsers and CLIs alike.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: map[*client]struct{}{},
	}
}

// Publish sends the event to all the listeners.
// Listeners that cannot keep up are disconnected.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.logger.Warnf("realtime: dropping slow listener %s", c.conn.RemoteAddr())
			h.remove(c)
		}
	}
}

// Listeners returns the number of connected listeners.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection to a websocket and streams the events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already replied to the client.
		h.logger.Warnf("realtime: %s", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Event, bufferSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Infof("realtime: listener %s connected", conn.RemoteAddr())
	go h.write(c)
	h.read(c)
}

// Close disconnects all the listeners.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// read consumes the control frames until the connection is closed.
func (h *Hub) read(c *client) {
	defer func() {
		h.mu.Lock()
		h.remove(c)
		h.mu.Unlock()
		c.conn.Close()
		h.logger.Infof("realtime: listener %s disconnected", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
