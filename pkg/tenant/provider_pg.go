package tenant

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpix/eventpix/pkg/pg"
)

const selectTenantQuery = `
SELECT t.id, t.name, COALESCE(t.domain, ''), COALESCE(s.plan_code, ''), t.active, t.created_at
FROM tenants t
LEFT JOIN subscriptions s ON s.tenant_id = t.id AND s.status = 'active'
WHERE t.id = $1`

const selectDomainsQuery = `SELECT domain, id FROM tenants WHERE domain IS NOT NULL`

// PGProvider loads tenants from PostgreSQL. It satisfies Provider.
type PGProvider struct {
	pool *pgxpool.Pool
}

// NewPGProvider creates a provider backed by the given pool.
// Panics if pool is nil.
func NewPGProvider(pool *pgxpool.Pool) *PGProvider {
	if pool == nil {
		panic("tenant: pgxpool is required")
	}
	return &PGProvider{pool: pool}
}

// GetByID returns the tenant with the given ID, or ErrTenantNotFound.
func (p *PGProvider) GetByID(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	err := p.pool.QueryRow(ctx, selectTenantQuery, id).
		Scan(&t.ID, &t.Name, &t.Domain, &t.PlanCode, &t.Active, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

// DomainMapping returns the custom-domain to tenant-ID mapping of all
// tenants that have one, normalized for resolver lookup.
func (p *PGProvider) DomainMapping(ctx context.Context) (map[string]string, error) {
	rows, err := p.pool.Query(ctx, selectDomainsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var domain, id string
		if err := rows.Scan(&domain, &id); err != nil {
			return nil, err
		}
		mapping[NormalizeHost(domain)] = id
	}
	return mapping, rows.Err()
}
