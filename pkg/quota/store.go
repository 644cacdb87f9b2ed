package quota

import (
	"context"

	"github.com/google/uuid"
)

// Store is the narrow data-access contract the Guard consumes. Every method
// reads state close in time to the write it gates; implementations must not
// serve stale aggregates.
//
// Error conventions: EventOwner returns ErrEventNotFound for missing events,
// PlanByCode returns ErrPlanNotFound for unknown codes, and
// ActiveSubscription returns (nil, nil) when the tenant has no subscription
// row at all. Any other error is treated as infrastructure failure.
type Store interface {
	// ActiveSubscription returns the tenant's current subscription, or
	// nil when none exists. Status filtering is the Guard's job.
	ActiveSubscription(ctx context.Context, tenantID string) (*Subscription, error)

	// PlanByCode loads the immutable plan record for a code.
	PlanByCode(ctx context.Context, code string) (Plan, error)

	// EventOwner returns the tenant id owning the event.
	EventOwner(ctx context.Context, eventID uuid.UUID) (string, error)

	// CountEvents returns the number of events owned by the tenant.
	CountEvents(ctx context.Context, tenantID string) (int64, error)

	// CountPhotos returns the number of photos in the event.
	CountPhotos(ctx context.Context, tenantID string, eventID uuid.UUID) (int64, error)

	// CountShares returns the number of shares of the event.
	CountShares(ctx context.Context, tenantID string, eventID uuid.UUID) (int64, error)
}

// Reserver is the authoritative, serialized admission path a Store may
// additionally provide. The Guard's check-then-act sequence is not atomic
// across concurrent callers: two uploads can both observe headroom and
// jointly exceed the limit. Implementations of Reserver close that gap by
// combining the ownership check, the count, the limit check and the write
// in one serialization point per (tenant, event) — a transaction with a row
// lock in Postgres, a mutex in the in-memory store.
//
// Callers should treat Guard checks as pre-flight advice and the Reserve
// methods as the admission decision of record.
type Reserver interface {
	// ReservePhotos admits and records n new photos in one atomic step.
	// Fails with the same taxonomy as Guard.CanUploadPhotos.
	ReservePhotos(ctx context.Context, tenantID string, eventID uuid.UUID, n int64) error

	// ReserveShares admits and records n new shares in one atomic step.
	ReserveShares(ctx context.Context, tenantID string, eventID uuid.UUID, n int64) error
}
