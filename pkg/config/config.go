// Package config loads typed configuration structs from environment
// variables. Each struct type is parsed once per process and cached, so
// every component sees the same values regardless of load order.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("nil pointer provided to config loader")
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
)

var (
	mu     sync.Mutex
	cache  = make(map[string]any)
	envDot sync.Once
)

// Load parses environment variables into v using its `env` struct tags.
// The first call for a given type does the parsing; later calls return the
// cached copy. A .env file, if present, is loaded once before any parse.
//
//	var cfg storage.Config
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	envDot.Do(func() {
		// The .env file is optional; absence is not an error.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	// Store a copy so later mutations of v do not leak into the cache.
	cache[key] = *v
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeName[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
