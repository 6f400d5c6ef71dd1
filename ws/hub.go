// Package ws pushes order status changes to customers watching an order.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/models"
)

const writeWait = 10 * time.Second

type StatusUpdate struct {
	OrderID   uuid.UUID          `json:"order_id"`
	Status    models.OrderStatus `json:"status"`
	Message   string             `json:"message"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewStatusUpdate(id uuid.UUID, status models.OrderStatus) StatusUpdate {
	return StatusUpdate{
		OrderID:   id,
		Status:    status,
		Message:   status.Message(),
		UpdatedAt: time.Now().UTC(),
	}
}

// watcher serializes writes to one connection.
type watcher struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *watcher) write(update StatusUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(update)
}

// send requires c.mu.
func (c *watcher) send(update StatusUpdate) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(update)
}

// Hub fans status updates out to the connections watching each order.
// mu guards the registry only; writes happen outside it.
type Hub struct {
	mu       sync.Mutex
	clients  map[uuid.UUID]map[*watcher]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*watcher]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request, sends the current status and keeps the
// connection subscribed until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, current StatusUpdate) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	// The initial status goes out before any broadcast can reach c.
	c := &watcher{conn: conn}
	c.mu.Lock()
	h.mu.Lock()
	if h.clients[current.OrderID] == nil {
		h.clients[current.OrderID] = make(map[*watcher]bool)
	}
	h.clients[current.OrderID][c] = true
	h.mu.Unlock()
	err = c.send(current)
	c.mu.Unlock()
	if err != nil {
		h.drop(current.OrderID, c)
		return
	}

	// Reads only detect the close; clients have nothing to say.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(current.OrderID, c)
}

// Broadcast sends the update to every watcher of the order and returns how
// many received it.
func (h *Hub) Broadcast(update StatusUpdate) int {
	h.mu.Lock()
	watchers := make([]*watcher, 0, len(h.clients[update.OrderID]))
	for c := range h.clients[update.OrderID] {
		watchers = append(watchers, c)
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range watchers {
		if err := c.write(update); err != nil {
			logrus.WithError(err).WithField("order_id", update.OrderID).Debug("ws write failed")
			h.drop(update.OrderID, c)
			continue
		}
		sent++
	}
	return sent
}

// Watchers returns the number of connections following an order.
func (h *Hub) Watchers(orderID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[orderID])
}

// Close disconnects everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, watchers := range h.clients {
		for c := range watchers {
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			c.conn.Close()
		}
		delete(h.clients, id)
	}
}

func (h *Hub) drop(orderID uuid.UUID, c *watcher) {
	h.mu.Lock()
	if _, ok := h.clients[orderID][c]; ok {
		delete(h.clients[orderID], c)
		if len(h.clients[orderID]) == 0 {
			delete(h.clients, orderID)
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}
