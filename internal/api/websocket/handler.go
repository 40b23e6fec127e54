package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades requests to the notification socket
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	ctx      context.Context
	log      *zap.Logger
}

// NewHandler creates a handler bound to hub. ctx bounds the lifetime of
// every connection; allowOrigin nil accepts any origin.
func NewHandler(ctx context.Context, hub *Hub, allowOrigin func(r *http.Request) bool, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if allowOrigin == nil {
		allowOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		ctx: ctx,
		log: log,
	}
}

// ServeHTTP handles one WebSocket connection
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(uuid.NewString(), conn, h.hub, h.log)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump(h.ctx)
	go client.ReadPump(h.ctx)
}
