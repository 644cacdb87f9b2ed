// Package quota implements plan-based admission control for tenant
// resources: before a mutation proceeds, the Guard decides whether the
// tenant's subscription plan still has headroom for the requested delta.
//
// Every check follows the same strictly sequential protocol:
//
//  1. Ownership: the targeted event must exist and belong to the checking
//     tenant. Failures collapse into ErrEventNotFound so callers cannot
//     learn whether a foreign event exists.
//  2. Plan resolution: the tenant's active subscription supplies the plan;
//     without one the tenant is silently downgraded to the free plan.
//     A referenced plan code without a plan record is ErrPlanNotFound,
//     an integrity error rather than a quota violation.
//  3. Usage counting: current usage is recomputed from the store at check
//     time, never cached across requests.
//  4. Decision: the operation is admitted iff current + requested <= limit.
//     The boundary is inclusive; landing exactly on the limit passes.
//
// # Advisory checks and authoritative reservations
//
// The Guard alone cannot make check-then-act atomic across concurrent
// callers: two uploads can both observe headroom and jointly exceed the
// limit. Exactness under concurrency is therefore a property of the
// storage collaborator. Stores that implement Reserver combine the check
// and the write in a single serialization point per (tenant, event) —
// PGStore uses a transaction with a row lock on the event, MemoryStore a
// mutex. Treat Guard checks as pre-flight advice for fast rejection and
// UI, and the Reserve methods as the admission decision of record.
//
// # Usage
//
//	store := quota.NewPGStore(pool)
//	guard := quota.New(store)
//
//	// Pre-flight check before accepting the upload body.
//	if err := guard.CanUploadPhotos(ctx, tenantID, eventID, 10); err != nil {
//		var limitErr *quota.LimitError
//		switch {
//		case errors.As(err, &limitErr):
//			// 4xx: actionable rejection, includes limit and usage
//		case errors.Is(err, quota.ErrEventNotFound):
//			// 404: never distinguishes "missing" from "not yours"
//		case errors.Is(err, quota.ErrStoreUnavailable):
//			// 5xx: transient, retryable
//		}
//	}
//
//	// Authoritative admission at write time.
//	err := store.ReservePhotos(ctx, tenantID, eventID, 10)
package quota
