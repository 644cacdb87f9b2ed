package quota_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpix/eventpix/pkg/quota"
)

func TestMemoryStoreReserve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("reserve records usage", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		eventID := uuid.New()
		store.AddEvent("acme", eventID)

		require.NoError(t, store.ReservePhotos(ctx, "acme", eventID, 150))

		n, err := store.CountPhotos(ctx, "acme", eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(150), n)

		// 150 + 51 exceeds the free ceiling of 200.
		err = store.ReservePhotos(ctx, "acme", eventID, 51)
		assert.ErrorIs(t, err, quota.ErrLimitExceeded)

		// A rejected reservation must not change the count.
		n, err = store.CountPhotos(ctx, "acme", eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(150), n)
	})

	t.Run("reserve classifies raw failures as infrastructure", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		eventID := uuid.New()
		store.AddEvent("acme", eventID)
		store.FailWith = errors.New("connection reset by peer")

		err := store.ReservePhotos(ctx, "acme", eventID, 1)
		require.ErrorIs(t, err, quota.ErrStoreUnavailable)
		assert.ErrorIs(t, err, store.FailWith)
		assert.NotErrorIs(t, err, quota.ErrLimitExceeded)

		err = store.ReserveShares(ctx, "acme", eventID, 1)
		assert.ErrorIs(t, err, quota.ErrStoreUnavailable)
	})

	t.Run("reserve enforces ownership", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		eventID := uuid.New()
		store.AddEvent("globex", eventID)

		err := store.ReservePhotos(ctx, "acme", eventID, 1)
		assert.ErrorIs(t, err, quota.ErrEventNotFound)
	})

	t.Run("reserve shares uses share ceiling", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		eventID := uuid.New()
		store.AddEvent("acme", eventID)

		for range 3 {
			require.NoError(t, store.ReserveShares(ctx, "acme", eventID, 1))
		}

		err := store.ReserveShares(ctx, "acme", eventID, 1)
		var limitErr *quota.LimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, quota.KindSharesPerEvent, limitErr.Kind)
		assert.Equal(t, int64(3), limitErr.CurrentUsage)
	})

	t.Run("concurrent reservations are exact", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		eventID := uuid.New()
		store.AddEvent("acme", eventID)
		store.SetSubscription(quota.Subscription{TenantID: "acme", PlanCode: "free", Status: quota.StatusActive})

		// 30 concurrent uploads of 10 photos each against a limit of 200:
		// exactly 20 must be admitted and exactly 10 rejected, regardless
		// of interleaving.
		const (
			workers = 30
			delta   = 10
		)

		var wg sync.WaitGroup
		results := make(chan error, workers)

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- store.ReservePhotos(ctx, "acme", eventID, delta)
			}()
		}
		wg.Wait()
		close(results)

		var admitted, rejected int
		for err := range results {
			if err == nil {
				admitted++
				continue
			}
			require.ErrorIs(t, err, quota.ErrLimitExceeded)
			rejected++
		}

		assert.Equal(t, 20, admitted)
		assert.Equal(t, 10, rejected)

		n, err := store.CountPhotos(ctx, "acme", eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(200), n)
	})
}

func TestMemoryStoreContracts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no subscription returns nil without error", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)

		sub, err := store.ActiveSubscription(ctx, "acme")
		require.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("unknown plan code", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)

		_, err := store.PlanByCode(ctx, "nope")
		assert.ErrorIs(t, err, quota.ErrPlanNotFound)
	})

	t.Run("event owner", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		eventID := uuid.New()
		store.AddEvent("acme", eventID)

		owner, err := store.EventOwner(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, "acme", owner)

		_, err = store.EventOwner(ctx, uuid.New())
		assert.ErrorIs(t, err, quota.ErrEventNotFound)
	})

	t.Run("injected failure propagates from every call", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		store.FailWith = assert.AnError

		_, err := store.ActiveSubscription(ctx, "acme")
		assert.ErrorIs(t, err, assert.AnError)

		_, err = store.PlanByCode(ctx, "free")
		assert.ErrorIs(t, err, assert.AnError)

		_, err = store.EventOwner(ctx, uuid.New())
		assert.ErrorIs(t, err, assert.AnError)

		_, err = store.CountPhotos(ctx, "acme", uuid.New())
		assert.ErrorIs(t, err, assert.AnError)

		_, err = store.CountShares(ctx, "acme", uuid.New())
		assert.ErrorIs(t, err, assert.AnError)

		_, err = store.CountEvents(ctx, "acme")
		assert.ErrorIs(t, err, assert.AnError)
	})
}
