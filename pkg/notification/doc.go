// Package notification builds the immutable change events pushed to
// WebSocket clients whenever a catalog entity is mutated.
//
// A Notification is constructed once, stamped with the encode time, and
// never modified afterwards:
//
//	n := notification.New(notification.KindCreate, book)
//	payload, err := json.Marshal(n)
//
// The wire format is stable: {"data": ..., "type": "Create", "createdAt": ...}.
// A nil payload is omitted from the encoded frame rather than emitted as null.
package notification
