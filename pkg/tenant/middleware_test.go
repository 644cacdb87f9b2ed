package tenant_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpix/eventpix/pkg/tenant"
)

type fakeProvider struct {
	tenants map[string]*tenant.Tenant
	err     error
	calls   int
}

func (p *fakeProvider) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if t, ok := p.tenants[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver("platform",
		tenant.WithDomainMapping(map[string]string{"shop.example.com": "acme"}),
	)

	newHandler := func(captured *tenant.Tenant) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got, ok := tenant.FromContext(r.Context()); ok {
				*captured = *got
			}
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("loads tenant and attaches to context", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{tenants: map[string]*tenant.Tenant{
			"acme": {ID: "acme", Name: "Acme", Active: true},
		}}

		var captured tenant.Tenant
		mw := tenant.Middleware(resolver, provider, tenant.WithCache(tenant.NewNoopCache()))

		req := httptest.NewRequest("GET", "http://shop.example.com/", nil)
		rec := httptest.NewRecorder()
		mw(newHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", captured.ID)
	})

	t.Run("attaches resolution for audit", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{tenants: map[string]*tenant.Tenant{
			"acme": {ID: "acme", Active: true},
		}}

		var res tenant.Resolution
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, _ = tenant.ResolutionFromContext(r.Context())
		})

		mw := tenant.Middleware(resolver, provider, tenant.WithCache(tenant.NewNoopCache()))
		req := httptest.NewRequest("GET", "http://shop.example.com/", nil)
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "acme", res.TenantID)
		assert.Equal(t, tenant.SourceDomain, res.Source)
	})

	t.Run("unknown tenant returns 404", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{}
		mw := tenant.Middleware(resolver, provider, tenant.WithCache(tenant.NewNoopCache()))

		req := httptest.NewRequest("GET", "http://nobody.example.com/", nil)
		rec := httptest.NewRecorder()
		mw(http.NotFoundHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inactive tenant returns 403", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{tenants: map[string]*tenant.Tenant{
			"acme": {ID: "acme", Active: false},
		}}
		mw := tenant.Middleware(resolver, provider, tenant.WithCache(tenant.NewNoopCache()))

		req := httptest.NewRequest("GET", "http://shop.example.com/", nil)
		rec := httptest.NewRecorder()
		mw(http.NotFoundHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("inactive tenant allowed when not required", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{tenants: map[string]*tenant.Tenant{
			"acme": {ID: "acme", Active: false},
		}}

		var captured tenant.Tenant
		mw := tenant.Middleware(resolver, provider,
			tenant.WithCache(tenant.NewNoopCache()),
			tenant.WithRequireActive(false),
		)

		req := httptest.NewRequest("GET", "http://shop.example.com/", nil)
		rec := httptest.NewRecorder()
		mw(newHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", captured.ID)
	})

	t.Run("skip paths bypass loading", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{}
		mw := tenant.Middleware(resolver, provider,
			tenant.WithSkipPaths([]string{"/health"}),
		)

		req := httptest.NewRequest("GET", "http://shop.example.com/health", nil)
		rec := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, provider.calls)
	})

	t.Run("second request served from cache", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{tenants: map[string]*tenant.Tenant{
			"acme": {ID: "acme", Active: true},
		}}

		cache := tenant.NewMemoryCache()
		defer cache.Close()

		mw := tenant.Middleware(resolver, provider, tenant.WithCache(cache))
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for range 2 {
			req := httptest.NewRequest("GET", "http://shop.example.com/", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		assert.Equal(t, 1, provider.calls)
	})

	t.Run("provider failure returns 500", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{err: errors.New("connection refused")}
		mw := tenant.Middleware(resolver, provider, tenant.WithCache(tenant.NewNoopCache()))

		req := httptest.NewRequest("GET", "http://shop.example.com/", nil)
		rec := httptest.NewRecorder()
		mw(http.NotFoundHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("panics on nil dependencies", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { tenant.Middleware(nil, &fakeProvider{}) })
		assert.Panics(t, func() { tenant.Middleware(resolver, nil) })
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	t.Run("passes with tenant in context", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), &tenant.Tenant{ID: "acme"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects without tenant", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
