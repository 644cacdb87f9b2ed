package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache stores one parsed configuration value per struct type so each
// config is read from the environment exactly once per process.
type cache struct {
	mu     sync.RWMutex
	values map[string]any
	onces  map[string]*sync.Once
}

var (
	globalCache = &cache{
		values: make(map[string]any),
		onces:  make(map[string]*sync.Once),
	}

	dotenvOnce sync.Once
)

// Load parses environment variables into the provided configuration struct
// based on `env` field tags. The default .env file, if present, is loaded
// first. Each unique configuration type is parsed only once; subsequent
// calls return the cached value.
//
//	type PostgresConfig struct {
//		ConnURL string `env:"PG_CONN_URL,required"`
//	}
//
//	var cfg PostgresConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is fine, real environments set variables directly.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	typeName := typeNameOf[T]()

	globalCache.mu.RLock()
	if cached, ok := globalCache.values[typeName]; ok {
		*v = cached.(T)
		globalCache.mu.RUnlock()
		return nil
	}
	globalCache.mu.RUnlock()

	globalCache.mu.Lock()
	once, exists := globalCache.onces[typeName]
	if !exists {
		once = new(sync.Once)
		globalCache.onces[typeName] = once
	}
	globalCache.mu.Unlock()

	var err error
	once.Do(func() {
		if parseErr := env.Parse(v); parseErr != nil {
			err = errors.Join(ErrParsingConfig, parseErr)
			return
		}

		globalCache.mu.Lock()
		globalCache.values[typeName] = *v
		globalCache.mu.Unlock()
	})
	if err != nil {
		return err
	}

	globalCache.mu.RLock()
	defer globalCache.mu.RUnlock()
	if cached, ok := globalCache.values[typeName]; ok {
		*v = cached.(T)
		return nil
	}
	// A concurrent caller hit the parse error inside the shared Once.
	return ErrConfigNotLoaded
}

// MustLoad works like Load but panics on failure. Use for configuration
// the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeNameOf[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
