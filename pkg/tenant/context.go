package tenant

import (
	"context"
	"log/slog"

	"github.com/eventpix/eventpix/pkg/logger"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// resolutionKey carries the Resolution separately from the loaded tenant so
// the audit trail survives even when no tenant record exists.
type resolutionKey struct{}

// WithTenant adds a tenant to the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from the context.
// Returns nil, false if no tenant is found.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok
}

// IDFromContext retrieves just the tenant id from the context.
func IDFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return "", false
	}
	return t.ID, true
}

// MustFromContext retrieves the tenant from the context and panics if it is
// missing. Use only in handlers mounted behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		panic("tenant: no tenant in context")
	}
	return t
}

// WithResolution attaches the resolution outcome to the context for audit.
func WithResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, res)
}

// ResolutionFromContext retrieves the resolution outcome from the context.
func ResolutionFromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(Resolution)
	return res, ok
}

// LoggerExtractor returns a context extractor for the logger that injects
// the resolved tenant id, resolution source and, once the record is
// loaded, the plan code into every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if res, ok := ResolutionFromContext(ctx); ok {
			attrs := []slog.Attr{
				slog.String("id", res.TenantID),
				logger.ResolutionSource(string(res.Source)),
			}
			if t, ok := FromContext(ctx); ok && t != nil && t.PlanCode != "" {
				attrs = append(attrs, logger.PlanCode(t.PlanCode))
			}
			return logger.Group("tenant", attrs...), true
		}
		if id, ok := IDFromContext(ctx); ok {
			return logger.TenantID(id), true
		}
		return slog.Attr{}, false
	}
}
