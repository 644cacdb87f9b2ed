package gallery

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eventpix/eventpix/pkg/logger"
	"github.com/eventpix/eventpix/pkg/quota"
	"github.com/eventpix/eventpix/pkg/tenant"
)

// Service handles quota-guarded gallery mutations. The actual writes go
// through the Reserver so admission and write share one serialization
// point; the Guard is consulted implicitly through the same store.
type Service struct {
	reserver quota.Reserver
	guard    *quota.Guard
	log      *slog.Logger
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithGuard enables the read-only usage endpoint backed by the given guard.
func WithGuard(g *quota.Guard) ServiceOption {
	if g == nil {
		panic("gallery: nil guard")
	}
	return func(s *Service) { s.guard = g }
}

// NewService creates the gallery service.
// Panics if reserver is nil.
func NewService(reserver quota.Reserver, log *slog.Logger, opts ...ServiceOption) *Service {
	if reserver == nil {
		panic("gallery: reserver is required")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Service{reserver: reserver, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type reserveRequest struct {
	Count int64 `json:"count"`
}

type limitExceededResponse struct {
	Error        string          `json:"error"`
	Kind         quota.LimitKind `json:"kind"`
	Limit        int64           `json:"limit"`
	CurrentUsage int64           `json:"current_usage"`
	Requested    int64           `json:"requested"`
}

// UploadPhotos admits and records new photos for an event.
func (s *Service) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	s.reserveHandler(w, r, func(tenantID string, eventID uuid.UUID, n int64) error {
		return s.reserver.ReservePhotos(r.Context(), tenantID, eventID, n)
	})
}

// CreateShare admits and records new shares for an event.
func (s *Service) CreateShare(w http.ResponseWriter, r *http.Request) {
	s.reserveHandler(w, r, func(tenantID string, eventID uuid.UUID, n int64) error {
		return s.reserver.ReserveShares(r.Context(), tenantID, eventID, n)
	})
}

type usageEntry struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}

type usageResponse struct {
	Photos usageEntry `json:"photos"`
	Shares usageEntry `json:"shares"`
}

// EventUsage reports current usage against the tenant's plan limits for
// one event. Requires a guard, see WithGuard.
func (s *Service) EventUsage(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	// The tenant record already carries the active plan code; hint it so
	// the guard skips a second subscription lookup.
	ctx := r.Context()
	if t.PlanCode != "" {
		ctx = quota.WithPlanCode(ctx, t.PlanCode)
	}

	photos, err := s.guard.Usage(ctx, t.ID, eventID, quota.KindPhotosPerEvent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	shares, err := s.guard.Usage(ctx, t.ID, eventID, quota.KindSharesPerEvent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(usageResponse{
		Photos: usageEntry{Current: photos.Current, Limit: photos.Limit},
		Shares: usageEntry{Current: shares.Current, Limit: shares.Limit},
	})
}

func (s *Service) reserveHandler(w http.ResponseWriter, r *http.Request, reserve func(string, uuid.UUID, int64) error) {
	t := tenant.MustFromContext(r.Context())

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	if err := reserve(t.ID, eventID, req.Count); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// writeError maps the quota error taxonomy onto HTTP semantics: quota
// violations are actionable client errors, ownership failures are plain
// not-found, integrity problems and store failures are server-side.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var limitErr *quota.LimitError

	switch {
	case errors.As(err, &limitErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(limitExceededResponse{
			Error:        "plan limit exceeded",
			Kind:         limitErr.Kind,
			Limit:        limitErr.Limit,
			CurrentUsage: limitErr.CurrentUsage,
			Requested:    limitErr.Requested,
		})

	case errors.Is(err, quota.ErrEventNotFound):
		http.Error(w, "event not found", http.StatusNotFound)

	case errors.Is(err, quota.ErrInvalidDelta):
		http.Error(w, "invalid request", http.StatusBadRequest)

	case errors.Is(err, quota.ErrPlanNotFound):
		s.log.ErrorContext(r.Context(), "plan catalog integrity error", logger.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)

	case errors.Is(err, quota.ErrStoreUnavailable):
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)

	default:
		s.log.ErrorContext(r.Context(), "unexpected gallery error", logger.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
