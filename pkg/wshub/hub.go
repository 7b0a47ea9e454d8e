package wshub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Hub fans encoded events out to every registered connection.
type Hub struct {
	registry     *Registry
	writeTimeout time.Duration
	log          *slog.Logger
}

// Option configures the Hub.
type Option func(*Hub)

// WithWriteTimeout bounds each per-connection send so one slow consumer
// cannot stall delivery to the others. Non-positive values are ignored.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithLogger supplies a logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHub creates a hub dispatching over the given registry.
func NewHub(registry *Registry, opts ...Option) *Hub {
	h := &Hub{
		registry:     registry,
		writeTimeout: 5 * time.Second,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry returns the hub's connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Broadcast serializes v once and sends the identical payload to every
// connection in the current snapshot, one goroutine per connection, and
// waits for all sends to finish. A failed send is logged and evicts that
// connection; it never affects the other sends or the caller, so the
// mutation that triggered the event always completes normally.
func (h *Hub) Broadcast(ctx context.Context, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to encode notification", slog.Any("error", err))
		return
	}

	conns := h.registry.Snapshot()
	if len(conns) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.WriteText(payload); err != nil {
				// A write failure means the peer is gone; drop it so the
				// next broadcast does not try again.
				h.log.WarnContext(ctx, "dropping connection after failed send",
					slog.Any("error", err))
				h.registry.Unregister(c)
				_ = c.Close()
			}
		}()
	}
	wg.Wait()
}

// WriteTimeout returns the per-send deadline applied to each connection.
func (h *Hub) WriteTimeout() time.Duration {
	return h.writeTimeout
}
