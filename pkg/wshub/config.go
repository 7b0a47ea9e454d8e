package wshub

import "time"

// Config holds the hub settings supplied at process start.
type Config struct {
	WriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"5s"` // WriteTimeout bounds each per-connection send during a broadcast.
}
