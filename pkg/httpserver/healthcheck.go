package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shelfstream/shelfstream/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness probes.
//
// Without dependency functions it answers 200 "ALIVE". With them, each
// function runs per request; all passing answers 200 "READY", any failure
// answers 500 "NOT_READY".
func HealthCheckHandler(log *slog.Logger, funcs ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(funcs) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, f := range funcs {
			if err := f(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
