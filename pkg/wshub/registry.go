package wshub

import "sync"

// Conn is one live push-protocol session. The handle itself is the
// identity; there is no separate connection ID. Implementations must
// serialize their own writes, WriteText may be called from concurrent
// broadcasts.
type Conn interface {
	// WriteText sends one text frame within the hub's write deadline.
	WriteText(data []byte) error
	// Close tears down the underlying transport.
	Close() error
}

// Registry tracks live connections. All methods are safe for concurrent
// use from independent accept and disconnect flows.
type Registry struct {
	mu    sync.RWMutex
	conns map[Conn]struct{}
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[Conn]struct{}),
	}
}

// Register adds a connection. Registering an already-present connection
// is a no-op.
func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

// Unregister removes a connection. It is idempotent: removing an absent
// connection is a no-op, not an error.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// Snapshot returns a point-in-time copy of the registered connections,
// safe to iterate while the registry continues to mutate.
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Len reports the number of currently registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
