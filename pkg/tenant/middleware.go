package tenant

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eventpix/eventpix/pkg/logger"
)

// Middleware resolves the tenant identity for every request, loads the
// tenant record, and attaches both to the request context. Resolution
// itself never fails; only loading or validating the record can.
func Middleware(resolver *Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant: resolver is required")
	}
	if provider == nil {
		panic("tenant: provider is required")
	}

	cfg := &config{
		cache:         NewMemoryCache(),
		cacheTTL:      5 * time.Minute,
		errorHandler:  defaultErrorHandler,
		requireActive: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			res := resolver.ResolveRequest(r)
			ctx := WithResolution(r.Context(), res)

			if res.Source == SourceDefault {
				cfg.logger.DebugContext(ctx, "tenant resolution fell through to default",
					logger.TenantID(res.TenantID),
					slog.String("host", r.Host),
				)
			}

			if cached, ok := cfg.cache.Get(ctx, res.TenantID); ok {
				if cfg.requireActive && !cached.Active {
					cfg.errorHandler(w, r, ErrInactiveTenant)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithTenant(ctx, cached)))
				return
			}

			t, err := provider.GetByID(ctx, res.TenantID)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if cfg.requireActive && !t.Active {
				cfg.errorHandler(w, r, ErrInactiveTenant)
				return
			}

			cfg.cache.Set(ctx, res.TenantID, t, cfg.cacheTTL)

			next.ServeHTTP(w, r.WithContext(WithTenant(ctx, t)))
		})
	}
}

// RequireTenant ensures a tenant is present in the request context.
// Mount it behind Middleware on routes that cannot operate without one.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t, ok := FromContext(r.Context()); !ok || t == nil {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
