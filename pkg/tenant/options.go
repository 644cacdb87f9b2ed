package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ErrorHandler handles errors that occur during tenant loading.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	cache         Cache
	cacheTTL      time.Duration
	errorHandler  ErrorHandler
	skipPaths     []string
	requireActive bool
	logger        *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets how long loaded tenant records stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant loading entirely,
// e.g. health and metrics endpoints.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithRequireActive controls whether inactive tenants are rejected.
// Enabled by default.
func WithRequireActive(require bool) Option {
	return func(c *config) {
		c.requireActive = require
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrInactiveTenant):
		http.Error(w, "Tenant is inactive", http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
