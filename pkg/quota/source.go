package quota

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source loads the plan catalog. Catalogs are immutable reference data:
// implementations load once and hand out copies.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

var (
	// ErrFailedToLoadPlans wraps catalog loading failures.
	ErrFailedToLoadPlans = errors.New("failed to load plan catalog")

	// ErrInvalidPlanConfiguration indicates a malformed catalog entry.
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
)

// inMemSource serves a static plan map.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory Source with a copy of the given plans.
func NewInMemSource(plans map[string]Plan) Source {
	return &inMemSource{plans: maps.Clone(plans)}
}

// Load returns a copy of all plans from memory.
func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.plans), nil
}

// fileSource loads the plan catalog from a YAML file.
type fileSource struct {
	path string
}

// NewFileSource returns a Source reading a YAML plan catalog from path.
// Expected document shape:
//
//	plans:
//	  - code: free
//	    name: Free
//	    max_events: 2
//	    max_photos_per_event: 200
//	    max_shares_per_event: 3
//	    price_monthly: {amount: 0, currency: USD}
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

type planCatalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// Load reads and validates the catalog. The free fallback plan must be
// present: without it tenants lacking an active subscription would have
// undefined limits.
func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var file planCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, p := range file.Plans {
		if err := validatePlan(p); err != nil {
			return nil, err
		}
		if _, dup := plans[p.Code]; dup {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan code %q", p.Code))
		}
		plans[p.Code] = p
	}

	if _, ok := plans[FreePlanCode]; !ok {
		return nil, errors.Join(ErrInvalidPlanConfiguration,
			fmt.Errorf("catalog is missing the %q fallback plan", FreePlanCode))
	}

	return plans, nil
}

func validatePlan(p Plan) error {
	if p.Code == "" {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan code must not be empty"))
	}
	for _, limit := range []int64{p.MaxEvents, p.MaxPhotosPerEvent, p.MaxSharesPerEvent} {
		if limit < Unlimited {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has invalid limit %d", p.Code, limit))
		}
	}
	return nil
}
