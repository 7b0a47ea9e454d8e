package notification

import (
	"time"
)

// Kind is the mutation that triggered a notification. The set is closed:
// no other value is ever encoded.
type Kind string

const (
	KindCreate Kind = "Create"
	KindUpdate Kind = "Update"
	KindDelete Kind = "Delete"
)

// Valid reports whether k is one of the three fixed mutation kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindUpdate, KindDelete:
		return true
	}
	return false
}

// Notification describes one entity mutation. The payload type is opaque to
// this package; its own JSON tags decide which fields reach the wire.
// Treat constructed values as read-only.
type Notification[T any] struct {
	Data      T         `json:"data,omitempty"`
	Type      Kind      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// New builds a notification stamped with the current UTC time at second
// precision. The timestamp marks encode time, not mutation time.
func New[T any](kind Kind, payload T) Notification[T] {
	return Notification[T]{
		Data:      payload,
		Type:      kind,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
