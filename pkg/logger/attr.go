package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// FileName records a stored file's generated name under the key "file".
func FileName(name string) slog.Attr {
	return slog.String("file", name)
}

// EntityID records a catalog entity identifier under the key "entity_id".
func EntityID(id string) slog.Attr {
	return slog.String("entity_id", id)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}
