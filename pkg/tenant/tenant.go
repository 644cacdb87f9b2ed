package tenant

import (
	"context"
	"time"
)

// Tenant holds the minimal tenant record needed for request-scoped
// operations and admin display.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	PlanCode  string    `json:"plan_code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant records from a data source. The identifier is a
// sanitized tenant id as produced by the Resolver.
type Provider interface {
	// GetByID retrieves a tenant by its canonical identifier.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByID(ctx context.Context, id string) (*Tenant, error)
}
