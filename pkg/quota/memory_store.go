package quota

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store and Reserver, primarily for tests and
// local development. A single mutex serializes all quota-relevant state, so
// the Reserve methods are exact under concurrency: N concurrent requests
// whose summed deltas exceed the remaining headroom by K produce exactly K
// rejections.
type MemoryStore struct {
	mu            sync.Mutex
	plans         map[string]Plan
	subscriptions map[string]Subscription
	eventOwners   map[uuid.UUID]string
	photoCounts   map[uuid.UUID]int64
	shareCounts   map[uuid.UUID]int64
	freeCode      string

	// FailWith, when set, is returned by every store call. Lets tests
	// exercise the infrastructure-error paths.
	FailWith error
}

var (
	_ Store    = (*MemoryStore)(nil)
	_ Reserver = (*MemoryStore)(nil)
)

// NewMemoryStore creates a MemoryStore seeded from the given plan source.
func NewMemoryStore(ctx context.Context, src Source) (*MemoryStore, error) {
	plans := map[string]Plan{}
	if src != nil {
		loaded, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}
		plans = loaded
	}

	return &MemoryStore{
		plans:         plans,
		subscriptions: make(map[string]Subscription),
		eventOwners:   make(map[uuid.UUID]string),
		photoCounts:   make(map[uuid.UUID]int64),
		shareCounts:   make(map[uuid.UUID]int64),
		freeCode:      FreePlanCode,
	}, nil
}

// SetSubscription upserts a tenant's subscription.
func (s *MemoryStore) SetSubscription(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.TenantID] = sub
}

// AddEvent registers an event owned by the tenant.
func (s *MemoryStore) AddEvent(tenantID string, eventID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventOwners[eventID] = tenantID
}

// SetPhotoCount seeds the photo count for an event.
func (s *MemoryStore) SetPhotoCount(eventID uuid.UUID, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photoCounts[eventID] = n
}

// SetShareCount seeds the share count for an event.
func (s *MemoryStore) SetShareCount(eventID uuid.UUID, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shareCounts[eventID] = n
}

func (s *MemoryStore) ActiveSubscription(ctx context.Context, tenantID string) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}
	sub, ok := s.subscriptions[tenantID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *MemoryStore) PlanByCode(ctx context.Context, code string) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return Plan{}, s.FailWith
	}
	plan, ok := s.plans[code]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (s *MemoryStore) EventOwner(ctx context.Context, eventID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return "", s.FailWith
	}
	owner, ok := s.eventOwners[eventID]
	if !ok {
		return "", ErrEventNotFound
	}
	return owner, nil
}

func (s *MemoryStore) CountEvents(ctx context.Context, tenantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, owner := range s.eventOwners {
		if owner == tenantID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountPhotos(ctx context.Context, tenantID string, eventID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return 0, s.FailWith
	}
	return s.photoCounts[eventID], nil
}

func (s *MemoryStore) CountShares(ctx context.Context, tenantID string, eventID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return 0, s.FailWith
	}
	return s.shareCounts[eventID], nil
}

// ReservePhotos atomically admits and records n new photos. The whole
// protocol runs under the store mutex, serializing concurrent callers.
func (s *MemoryStore) ReservePhotos(ctx context.Context, tenantID string, eventID uuid.UUID, n int64) error {
	return s.reserve(ctx, tenantID, eventID, KindPhotosPerEvent, n)
}

// ReserveShares atomically admits and records n new shares.
func (s *MemoryStore) ReserveShares(ctx context.Context, tenantID string, eventID uuid.UUID, n int64) error {
	return s.reserve(ctx, tenantID, eventID, KindSharesPerEvent, n)
}

func (s *MemoryStore) reserve(ctx context.Context, tenantID string, eventID uuid.UUID, kind LimitKind, n int64) error {
	if n < 0 {
		return ErrInvalidDelta
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return errors.Join(ErrStoreUnavailable, s.FailWith)
	}

	owner, ok := s.eventOwners[eventID]
	if !ok || owner != tenantID {
		return ErrEventNotFound
	}

	code := s.freeCode
	if sub, ok := s.subscriptions[tenantID]; ok && sub.Status == StatusActive {
		code = sub.PlanCode
	}
	plan, ok := s.plans[code]
	if !ok {
		return ErrPlanNotFound
	}

	counts := s.photoCounts
	limit := plan.MaxPhotosPerEvent
	if kind == KindSharesPerEvent {
		counts = s.shareCounts
		limit = plan.MaxSharesPerEvent
	}

	if limit != Unlimited && counts[eventID]+n > limit {
		return &LimitError{
			TenantID:     tenantID,
			EventID:      eventID,
			Kind:         kind,
			Limit:        limit,
			CurrentUsage: counts[eventID],
			Requested:    n,
		}
	}

	counts[eventID] += n
	return nil
}
