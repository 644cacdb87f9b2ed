package quota

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eventpix/eventpix/pkg/logger"
)

// Guard gates quota-relevant mutations behind plan-derived limits, with
// ownership enforcement as a precondition. It is stateless between calls:
// every check loads subscription, plan and usage fresh from the Store.
//
// Within one check the steps are strictly sequential: ownership first, then
// plan resolution, then usage counting, then the admission decision. An
// unowned event never reaches the counting step, so it cannot leak usage
// information about another tenant.
type Guard struct {
	store    Store
	freeCode string
	log      *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithFreePlanCode overrides the fallback plan code used when a tenant has
// no active subscription.
func WithFreePlanCode(code string) Option {
	return func(g *Guard) {
		if code != "" {
			g.freeCode = code
		}
	}
}

// WithLogger sets the logger used for integrity warnings.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a Guard over the given store.
// Panics if store is nil to fail fast during initialization.
func New(store Store, opts ...Option) *Guard {
	if store == nil {
		panic("quota: store is required")
	}

	g := &Guard{
		store:    store,
		freeCode: FreePlanCode,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanUploadPhotos checks whether the tenant may add additional photos to
// the event. Returns nil when admitted; otherwise exactly one of
// ErrEventNotFound, a *LimitError, ErrPlanNotFound, or an error wrapping
// ErrStoreUnavailable.
func (g *Guard) CanUploadPhotos(ctx context.Context, tenantID string, eventID uuid.UUID, additional int64) error {
	return g.admitScoped(ctx, tenantID, eventID, KindPhotosPerEvent, additional)
}

// CanCreateShare checks whether the tenant may add additional shares to
// the event. Same failure taxonomy as CanUploadPhotos.
func (g *Guard) CanCreateShare(ctx context.Context, tenantID string, eventID uuid.UUID, additional int64) error {
	return g.admitScoped(ctx, tenantID, eventID, KindSharesPerEvent, additional)
}

// CanCreateEvent checks whether the tenant may create additional events.
// Event creation is tenant-scoped, so no ownership precondition applies.
func (g *Guard) CanCreateEvent(ctx context.Context, tenantID string, additional int64) error {
	if additional < 0 {
		return ErrInvalidDelta
	}

	plan, err := g.plan(ctx, tenantID)
	if err != nil {
		return g.classifyPlanErr(ctx, tenantID, err)
	}

	limit := plan.MaxEvents
	if limit == Unlimited {
		return nil
	}

	current, err := g.store.CountEvents(ctx, tenantID)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	if current+additional > limit {
		return &LimitError{
			TenantID:     tenantID,
			Kind:         KindEvents,
			Limit:        limit,
			CurrentUsage: current,
			Requested:    additional,
		}
	}
	return nil
}

// Usage returns the current usage and limit for one resource kind, scoped
// to the event for per-event kinds. Runs the same ownership precondition
// as the admission checks.
func (g *Guard) Usage(ctx context.Context, tenantID string, eventID uuid.UUID, kind LimitKind) (UsageInfo, error) {
	if kind != KindEvents {
		if err := g.checkOwnership(ctx, tenantID, eventID); err != nil {
			return UsageInfo{}, err
		}
	}

	plan, err := g.plan(ctx, tenantID)
	if err != nil {
		return UsageInfo{}, g.classifyPlanErr(ctx, tenantID, err)
	}

	limit, ok := plan.Limit(kind)
	if !ok {
		return UsageInfo{}, ErrPlanNotFound
	}

	current, err := g.count(ctx, tenantID, eventID, kind)
	if err != nil {
		return UsageInfo{}, errors.Join(ErrStoreUnavailable, err)
	}

	return UsageInfo{Kind: kind, Current: current, Limit: limit}, nil
}

// plan resolves the tenant's effective plan, preferring a plan code hint
// carried in the context (see WithPlanCode) over a fresh subscription
// lookup. A stale hint falls back to full resolution.
func (g *Guard) plan(ctx context.Context, tenantID string) (Plan, error) {
	if code, ok := PlanCodeFromContext(ctx); ok && code != "" {
		if plan, err := g.store.PlanByCode(ctx, code); err == nil {
			return plan, nil
		}
	}
	return resolvePlan(ctx, g.store, tenantID, g.freeCode)
}

// admitScoped runs the full admission protocol for event-scoped kinds:
// ownership, plan resolution, usage count, decision.
func (g *Guard) admitScoped(ctx context.Context, tenantID string, eventID uuid.UUID, kind LimitKind, additional int64) error {
	if additional < 0 {
		return ErrInvalidDelta
	}

	if err := g.checkOwnership(ctx, tenantID, eventID); err != nil {
		return err
	}

	plan, err := g.plan(ctx, tenantID)
	if err != nil {
		return g.classifyPlanErr(ctx, tenantID, err)
	}

	limit, _ := plan.Limit(kind)
	if limit == Unlimited {
		return nil
	}

	current, err := g.count(ctx, tenantID, eventID, kind)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	// Inclusive boundary: landing exactly on the limit is allowed.
	if current+additional > limit {
		return &LimitError{
			TenantID:     tenantID,
			EventID:      eventID,
			Kind:         kind,
			Limit:        limit,
			CurrentUsage: current,
			Requested:    additional,
		}
	}
	return nil
}

func (g *Guard) checkOwnership(ctx context.Context, tenantID string, eventID uuid.UUID) error {
	owner, err := g.store.EventOwner(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return ErrEventNotFound
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	if owner != tenantID {
		// Collapsed into not-found to prevent tenant enumeration.
		return ErrEventNotFound
	}
	return nil
}

func (g *Guard) count(ctx context.Context, tenantID string, eventID uuid.UUID, kind LimitKind) (int64, error) {
	switch kind {
	case KindEvents:
		return g.store.CountEvents(ctx, tenantID)
	case KindPhotosPerEvent:
		return g.store.CountPhotos(ctx, tenantID, eventID)
	case KindSharesPerEvent:
		return g.store.CountShares(ctx, tenantID, eventID)
	default:
		return 0, ErrPlanNotFound
	}
}

// classifyPlanErr logs missing plan records before returning: a referenced
// code without a plan row is an integrity problem worth operator attention.
func (g *Guard) classifyPlanErr(ctx context.Context, tenantID string, err error) error {
	if errors.Is(err, ErrPlanNotFound) {
		g.log.ErrorContext(ctx, "referenced plan record missing",
			logger.TenantID(tenantID),
			logger.Error(err),
		)
		return err
	}
	return err
}

// resolvePlan loads the tenant's plan: the active subscription's plan when
// one exists, otherwise the free fallback. Shared with Reserver
// implementations so the advisory and authoritative paths agree.
func resolvePlan(ctx context.Context, s Store, tenantID, freeCode string) (Plan, error) {
	sub, err := s.ActiveSubscription(ctx, tenantID)
	if err != nil {
		return Plan{}, errors.Join(ErrStoreUnavailable, err)
	}

	code := freeCode
	if sub.IsActive() {
		code = sub.PlanCode
	}

	plan, err := s.PlanByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return Plan{}, err
		}
		return Plan{}, errors.Join(ErrStoreUnavailable, err)
	}
	return plan, nil
}
