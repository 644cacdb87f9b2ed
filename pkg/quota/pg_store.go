package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpix/eventpix/pkg/pg"
)

// PGStore is the Postgres-backed Store and Reserver. Counts are computed
// with aggregate queries at check time; the Reserve methods take a row lock
// on the event so quota-relevant writes for one (tenant, event) pair are
// serialized at the storage layer.
type PGStore struct {
	pool     *pgxpool.Pool
	freeCode string
}

var (
	_ Store    = (*PGStore)(nil)
	_ Reserver = (*PGStore)(nil)
)

// NewPGStore creates a PGStore over the given connection pool.
// Panics if pool is nil.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("quota: pgx pool is required")
	}
	return &PGStore{pool: pool, freeCode: FreePlanCode}
}

func (s *PGStore) ActiveSubscription(ctx context.Context, tenantID string) (*Subscription, error) {
	const q = `SELECT tenant_id, plan_code, status FROM subscriptions WHERE tenant_id = $1`

	var sub Subscription
	err := s.pool.QueryRow(ctx, q, tenantID).Scan(&sub.TenantID, &sub.PlanCode, &sub.Status)
	if pg.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *PGStore) PlanByCode(ctx context.Context, code string) (Plan, error) {
	const q = `SELECT code, name, max_events, max_photos_per_event, max_shares_per_event,
		price_monthly_cents, currency FROM plans WHERE code = $1`

	var p Plan
	err := s.pool.QueryRow(ctx, q, code).Scan(
		&p.Code, &p.Name, &p.MaxEvents, &p.MaxPhotosPerEvent, &p.MaxSharesPerEvent,
		&p.PriceMonthly.Amount, &p.PriceMonthly.Currency,
	)
	if pg.IsNotFoundError(err) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (s *PGStore) EventOwner(ctx context.Context, eventID uuid.UUID) (string, error) {
	const q = `SELECT tenant_id FROM events WHERE id = $1`

	var owner string
	err := s.pool.QueryRow(ctx, q, eventID).Scan(&owner)
	if pg.IsNotFoundError(err) {
		return "", ErrEventNotFound
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (s *PGStore) CountEvents(ctx context.Context, tenantID string) (int64, error) {
	const q = `SELECT count(*) FROM events WHERE tenant_id = $1`

	var n int64
	if err := s.pool.QueryRow(ctx, q, tenantID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PGStore) CountPhotos(ctx context.Context, tenantID string, eventID uuid.UUID) (int64, error) {
	const q = `SELECT count(*) FROM photos WHERE tenant_id = $1 AND event_id = $2`

	var n int64
	if err := s.pool.QueryRow(ctx, q, tenantID, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PGStore) CountShares(ctx context.Context, tenantID string, eventID uuid.UUID) (int64, error) {
	const q = `SELECT count(*) FROM shares WHERE tenant_id = $1 AND event_id = $2`

	var n int64
	if err := s.pool.QueryRow(ctx, q, tenantID, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReservePhotos admits and records n new photo rows in one transaction.
// The SELECT ... FOR UPDATE on the event row is the serialization point:
// a concurrent reservation for the same event blocks until this one
// commits, so counts can never be read stale across the decision.
func (s *PGStore) ReservePhotos(ctx context.Context, tenantID string, eventID uuid.UUID, n int64) error {
	return s.reserve(ctx, tenantID, eventID, KindPhotosPerEvent, n)
}

// ReserveShares admits and records n new share rows in one transaction.
func (s *PGStore) ReserveShares(ctx context.Context, tenantID string, eventID uuid.UUID, n int64) error {
	return s.reserve(ctx, tenantID, eventID, KindSharesPerEvent, n)
}

func (s *PGStore) reserve(ctx context.Context, tenantID string, eventID uuid.UUID, kind LimitKind, n int64) error {
	if n < 0 {
		return ErrInvalidDelta
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	err = tx.QueryRow(ctx, `SELECT tenant_id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&owner)
	if pg.IsNotFoundError(err) {
		return ErrEventNotFound
	}
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if owner != tenantID {
		return ErrEventNotFound
	}

	plan, err := s.planForTenant(ctx, tx, tenantID)
	if err != nil {
		return err
	}

	table := "photos"
	limit := plan.MaxPhotosPerEvent
	if kind == KindSharesPerEvent {
		table = "shares"
		limit = plan.MaxSharesPerEvent
	}

	var current int64
	countQ := fmt.Sprintf(`SELECT count(*) FROM %s WHERE event_id = $1`, table)
	if err := tx.QueryRow(ctx, countQ, eventID).Scan(&current); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	if limit != Unlimited && current+n > limit {
		return &LimitError{
			TenantID:     tenantID,
			EventID:      eventID,
			Kind:         kind,
			Limit:        limit,
			CurrentUsage: current,
			Requested:    n,
		}
	}

	insertQ := fmt.Sprintf(
		`INSERT INTO %s (id, tenant_id, event_id) SELECT gen_random_uuid(), $1, $2 FROM generate_series(1, $3)`,
		table,
	)
	if _, err := tx.Exec(ctx, insertQ, tenantID, eventID, n); err != nil {
		// Only the event row is locked; a concurrently deleted tenant
		// surfaces here as a referential integrity violation.
		if pg.IsForeignKeyViolationError(err) {
			return ErrEventNotFound
		}
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// planForTenant resolves the tenant's plan inside the reservation
// transaction so the decision and the write see the same snapshot.
func (s *PGStore) planForTenant(ctx context.Context, tx pgx.Tx, tenantID string) (Plan, error) {
	const subQ = `SELECT plan_code, status FROM subscriptions WHERE tenant_id = $1`

	code := s.freeCode
	var planCode string
	var status SubscriptionStatus
	err := tx.QueryRow(ctx, subQ, tenantID).Scan(&planCode, &status)
	switch {
	case pg.IsNotFoundError(err):
		// no subscription row, free fallback
	case err != nil:
		return Plan{}, errors.Join(ErrStoreUnavailable, err)
	case status == StatusActive:
		code = planCode
	}

	const planQ = `SELECT code, name, max_events, max_photos_per_event, max_shares_per_event,
		price_monthly_cents, currency FROM plans WHERE code = $1`

	var p Plan
	err = tx.QueryRow(ctx, planQ, code).Scan(
		&p.Code, &p.Name, &p.MaxEvents, &p.MaxPhotosPerEvent, &p.MaxSharesPerEvent,
		&p.PriceMonthly.Amount, &p.PriceMonthly.Currency,
	)
	if pg.IsNotFoundError(err) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		return Plan{}, errors.Join(ErrStoreUnavailable, err)
	}
	return p, nil
}
