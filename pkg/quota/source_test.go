package quota_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpix/eventpix/pkg/quota"
)

func TestInMemSource(t *testing.T) {
	t.Parallel()

	t.Run("load returns a copy", func(t *testing.T) {
		t.Parallel()

		src := quota.NewInMemSource(testPlans())

		first, err := src.Load(context.Background())
		require.NoError(t, err)

		// Mutating the returned map must not affect later loads.
		delete(first, "free")

		second, err := src.Load(context.Background())
		require.NoError(t, err)
		assert.Contains(t, second, "free")
	})

	t.Run("nil plans", func(t *testing.T) {
		t.Parallel()

		src := quota.NewInMemSource(nil)

		plans, err := src.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, plans)
	})
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("loads catalog from yaml", func(t *testing.T) {
		t.Parallel()

		src := quota.NewFileSource("testdata/plans.yaml")

		plans, err := src.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 3)

		free := plans["free"]
		assert.Equal(t, "Free", free.Name)
		assert.Equal(t, int64(2), free.MaxEvents)
		assert.Equal(t, int64(200), free.MaxPhotosPerEvent)
		assert.Equal(t, int64(3), free.MaxSharesPerEvent)
		assert.Equal(t, quota.Money{Amount: 0, Currency: "USD"}, free.PriceMonthly)

		business := plans["business"]
		assert.Equal(t, quota.Unlimited, business.MaxPhotosPerEvent)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		src := quota.NewFileSource("testdata/does_not_exist.yaml")

		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, quota.ErrFailedToLoadPlans)
	})

	t.Run("catalog without free plan rejected", func(t *testing.T) {
		t.Parallel()

		src := quota.NewFileSource("testdata/no_free.yaml")

		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, quota.ErrInvalidPlanConfiguration)
	})

	t.Run("invalid limit rejected", func(t *testing.T) {
		t.Parallel()

		src := quota.NewFileSource("testdata/bad_limit.yaml")

		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, quota.ErrInvalidPlanConfiguration)
	})
}

func TestPlanLimit(t *testing.T) {
	t.Parallel()

	plan := testPlans()["free"]

	tests := []struct {
		kind  quota.LimitKind
		want  int64
		known bool
	}{
		{kind: quota.KindEvents, want: 2, known: true},
		{kind: quota.KindPhotosPerEvent, want: 200, known: true},
		{kind: quota.KindSharesPerEvent, want: 3, known: true},
		{kind: quota.LimitKind("bandwidth"), want: 0, known: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			got, ok := plan.Limit(tt.kind)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
