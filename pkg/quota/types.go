package quota

// LimitKind identifies which plan limit an admission check is made against.
type LimitKind string

const (
	// KindEvents limits the number of events a tenant may own.
	KindEvents LimitKind = "events"
	// KindPhotosPerEvent limits photos within a single event.
	KindPhotosPerEvent LimitKind = "photos_per_event"
	// KindSharesPerEvent limits shares within a single event.
	KindSharesPerEvent LimitKind = "shares_per_event"
)

// Unlimited marks a limit with no ceiling (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// FreePlanCode is the plan every tenant falls back to when no active
// subscription exists. A plan record with this code must always be present
// so no tenant is ever left with undefined limits.
const FreePlanCode = "free"

// Money represents a monetary amount in the smallest currency unit.
// $10.99 USD is Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount" json:"amount"`
	Currency string `yaml:"currency" json:"currency"`
}

// Plan is immutable reference data describing a subscription tier and its
// resource ceilings, keyed by Code.
type Plan struct {
	Code              string `yaml:"code" json:"code"`
	Name              string `yaml:"name" json:"name"`
	MaxEvents         int64  `yaml:"max_events" json:"max_events"`
	MaxPhotosPerEvent int64  `yaml:"max_photos_per_event" json:"max_photos_per_event"`
	MaxSharesPerEvent int64  `yaml:"max_shares_per_event" json:"max_shares_per_event"`
	PriceMonthly      Money  `yaml:"price_monthly" json:"price_monthly"`
}

// Limit returns the ceiling for the given kind.
// The second result is false for unknown kinds.
func (p Plan) Limit(kind LimitKind) (int64, bool) {
	switch kind {
	case KindEvents:
		return p.MaxEvents, true
	case KindPhotosPerEvent:
		return p.MaxPhotosPerEvent, true
	case KindSharesPerEvent:
		return p.MaxSharesPerEvent, true
	default:
		return 0, false
	}
}

// SubscriptionStatus represents the current state of a subscription.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusTrialing  SubscriptionStatus = "trialing"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Subscription links a tenant to a plan. Only StatusActive subscriptions
// supply plan limits; any other status is treated as "no usable plan" and
// the tenant is downgraded to the free plan for admission purposes.
type Subscription struct {
	TenantID string
	PlanCode string
	Status   SubscriptionStatus
}

// IsActive reports whether the subscription may supply plan limits.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}

// UsageInfo contains the current usage and limit for one resource kind.
type UsageInfo struct {
	Kind    LimitKind `json:"kind"`
	Current int64     `json:"current"`
	Limit   int64     `json:"limit"`
}
