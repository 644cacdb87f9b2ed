package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant record cannot be loaded.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when a resolved tenant is disabled.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNoTenantInContext is returned when a handler requires a tenant
	// but none was attached to the request context.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
