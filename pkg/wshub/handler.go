package wshub

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler owns one accepted connection end to end: upgrade, register,
// drain inbound frames, unregister, close. The drain loop discards
// client payloads, this hub is push-only.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithUpgrader replaces the default upgrader, e.g. to tighten the origin
// check in production.
func WithUpgrader(u websocket.Upgrader) HandlerOption {
	return func(h *Handler) { h.upgrader = u }
}

// WithHandlerLogger supplies a logger. Defaults to slog.Default().
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates the upgrade endpoint for the hub.
func NewHandler(hub *Hub, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and runs the connection lifecycle. The
// connection stays registered exactly as long as this method runs;
// unregistration is deferred so it happens on every exit path, including
// transport errors.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}

	conn := newWSConn(ws, h.hub.WriteTimeout())
	registry := h.hub.Registry()
	registry.Register(conn)
	h.log.InfoContext(r.Context(), "websocket connected",
		slog.String("remote", r.RemoteAddr),
		slog.Int("connections", registry.Len()))

	defer func() {
		registry.Unregister(conn)
		_ = conn.Close()
		h.log.InfoContext(r.Context(), "websocket disconnected",
			slog.String("remote", r.RemoteAddr),
			slog.Int("connections", registry.Len()))
	}()

	// Drain loop. gorilla's default close handler echoes close frames, so
	// the handshake completes before ReadMessage returns the close error.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
