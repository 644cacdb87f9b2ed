package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpix/eventpix/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	capture := func() (http.Handler, *string) {
		var got string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = requestid.FromContext(r.Context())
		}))
		return h, &got
	}

	t.Run("generates an id when none supplied", func(t *testing.T) {
		t.Parallel()

		h, got := capture()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		require.NotEmpty(t, *got)
		assert.Equal(t, *got, rec.Header().Get(requestid.Header))
	})

	t.Run("reuses a valid client id", func(t *testing.T) {
		t.Parallel()

		h, got := capture()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(requestid.Header, "trace-abc_123")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "trace-abc_123", *got)
	})

	t.Run("replaces a hostile client id", func(t *testing.T) {
		t.Parallel()

		h, got := capture()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(requestid.Header, "not valid\n"+strings.Repeat("x", 200))
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotEmpty(t, *got)
		assert.NotContains(t, *got, "\n")
	})
}

func TestFromContextMissing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(t.Context()))
}
