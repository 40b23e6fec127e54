package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fortuna/pitchside/internal/metrics"
	"github.com/fortuna/pitchside/internal/notify"
	"go.uber.org/zap"
)

// ErrBroadcastFull is returned when the hub cannot accept another message
var ErrBroadcastFull = errors.New("broadcast buffer full")

// Hub keeps the connected clients and fans toasts out to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan ServerMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log *zap.Logger
}

// NewHub creates a hub; call Run to start it
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves register, unregister and broadcast requests until ctx ends
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("notification hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every client
func (h *Hub) Broadcast(msg ServerMessage) error {
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// Deliver pushes a toast to the connected browsers
func (h *Hub) Deliver(ctx context.Context, toast notify.Toast) error {
	return h.Broadcast(ServerMessage{
		Type:      MessageTypeToast,
		Payload:   toast,
		Timestamp: time.Now(),
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	metrics.SetWebSocketClients(len(h.clients))
	h.log.Debug("client connected", zap.String("client_id", c.ID), zap.Int("total", len(h.clients)))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		metrics.SetWebSocketClients(len(h.clients))
		h.log.Debug("client disconnected", zap.String("client_id", c.ID), zap.Int("total", len(h.clients)))
	}
}

func (h *Hub) broadcastMessage(msg ServerMessage) {
	severity := ""
	if toast, ok := msg.Payload.(notify.Toast); ok {
		severity = string(toast.Severity)
	}

	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if severity != "" && !c.Accepts(severity) {
			continue
		}
		if !c.TrySend(msg) {
			// Slow client; drop it rather than stall the others
			h.log.Warn("client buffer full, disconnecting", zap.String("client_id", c.ID))
			h.unregisterClient(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.Info("shutting down notification hub", zap.Int("clients", len(h.clients)))
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	metrics.SetWebSocketClients(0)
}
