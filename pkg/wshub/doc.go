// Package wshub is the real-time change-notification hub. It tracks live
// WebSocket connections in a concurrency-safe registry and fans encoded
// events out to every one of them.
//
// The hub is push-only: the server sends JSON text frames and discards
// anything clients write. Delivery is best-effort; a failed send is
// logged, the offending connection is dropped from the registry, and the
// remaining connections still receive the frame. Broadcast never reports
// failure to the caller, so a mutation's outcome is independent of
// notification delivery.
//
//	reg := wshub.NewRegistry()
//	hub := wshub.NewHub(reg, wshub.WithWriteTimeout(5*time.Second))
//	mux.Handle("/ws", wshub.NewHandler(hub))
//
//	// after a successful mutation:
//	hub.Broadcast(ctx, notification.New(notification.KindCreate, book))
package wshub
