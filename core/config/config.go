// Package config provides type-safe environment variable loading with
// per-type caching. A .env file, when present, is loaded once before
// the first parse; explicit environment variables win over it.
package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.RWMutex
	cache = make(map[reflect.Type]any)
)

// Load parses environment variables into cfg. Each concrete type is
// parsed once per process; later calls for the same type get the cached
// value, so every component sees identical configuration.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is the normal production case.
		_ = godotenv.Load()
	})

	t := reflect.TypeOf(*cfg)

	mu.RLock()
	cached, ok := cache[t]
	mu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", t, err)
	}

	mu.Lock()
	cache[t] = *cfg
	mu.Unlock()
	return nil
}

// MustLoad is Load that panics on failure, for use during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
