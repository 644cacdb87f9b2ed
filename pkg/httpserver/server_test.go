package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpix/eventpix/pkg/httpserver"
)

func TestServerRun(t *testing.T) {
	t.Parallel()

	t.Run("serves requests and stops on context cancel", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("pong"))
		})

		srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, mux)

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		err := srv.Run(ctx)
		assert.NoError(t, err)
	})

	t.Run("listener failure is reported", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New(httpserver.Config{Addr: "256.256.256.256:99999"}, http.NotFoundHandler())

		err := srv.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, httpserver.ErrServe)
	})

	t.Run("nil handler panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			httpserver.New(httpserver.Config{}, nil)
		})
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	t.Run("liveness without probes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		httpserver.Healthcheck(nil)(rec, httptest.NewRequest("GET", "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, "ALIVE", string(body))
	})

	t.Run("readiness with healthy probes", func(t *testing.T) {
		t.Parallel()

		healthy := func(context.Context) error { return nil }

		rec := httptest.NewRecorder()
		httpserver.Healthcheck(nil, healthy, healthy)(rec, httptest.NewRequest("GET", "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, "READY", string(body))
	})

	t.Run("readiness with a failing probe", func(t *testing.T) {
		t.Parallel()

		healthy := func(context.Context) error { return nil }
		broken := func(context.Context) error { return errors.New("connection refused") }

		rec := httptest.NewRecorder()
		httpserver.Healthcheck(nil, healthy, broken)(rec, httptest.NewRequest("GET", "/readyz", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, "NOT_READY", string(body))
	})
}
