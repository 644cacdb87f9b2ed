package quota

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEventNotFound is returned when an event does not exist or is not
	// owned by the checking tenant. The two causes are deliberately
	// indistinguishable so that probing with foreign event ids cannot be
	// used to enumerate tenants.
	ErrEventNotFound = errors.New("event not found")

	// ErrLimitExceeded is the sentinel matched by LimitError via errors.Is.
	ErrLimitExceeded = errors.New("plan limit exceeded")

	// ErrPlanNotFound indicates a referenced plan code has no plan record.
	// This is a data-integrity problem, not a quota violation, and callers
	// should log it at a higher severity than a rejected admission.
	ErrPlanNotFound = errors.New("plan record not found")

	// ErrStoreUnavailable wraps backing store failures and timeouts.
	// Transient; callers may retry with backoff. Never conflated with a
	// quota decision.
	ErrStoreUnavailable = errors.New("quota store unavailable")

	// ErrInvalidDelta is returned when the requested delta is negative.
	ErrInvalidDelta = errors.New("requested delta must not be negative")
)

// LimitError reports a rejected admission with enough context for the
// caller to render an actionable message. Matches ErrLimitExceeded.
type LimitError struct {
	TenantID     string    `json:"tenant_id"`
	EventID      uuid.UUID `json:"event_id,omitempty"`
	Kind         LimitKind `json:"kind"`
	Limit        int64     `json:"limit"`
	CurrentUsage int64     `json:"current_usage"`
	Requested    int64     `json:"requested"`
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("plan limit exceeded: %s limit %d, current %d, requested %d (tenant %s)",
		e.Kind, e.Limit, e.CurrentUsage, e.Requested, e.TenantID)
}

// Is lets errors.Is(err, ErrLimitExceeded) match without losing the
// structured fields.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// Remaining returns the headroom left before the limit, never negative.
func (e *LimitError) Remaining() int64 {
	if r := e.Limit - e.CurrentUsage; r > 0 {
		return r
	}
	return 0
}
