package roomytest

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/castaneai/roomy"
)

func RunReservationStoreTests(t *testing.T, newStore func(t *testing.T) roomy.ReservationStore) {
	t.Run("CreateGet", func(t *testing.T) {
		ctx := t.Context()
		store := newStore(t)
		r := roomy.Reservation{Room: "R1", Activity: "Yoga", Day: 2, Hour: 10, Duration: 1, BookedHours: 1, HoldID: "h1"}
		id, err := store.Create(ctx, r)
		require.NoError(t, err)
		require.Equal(t, int64(1), id)

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		r.ID = id
		require.Equal(t, r, *got)

		id2, err := store.Create(ctx, r)
		require.NoError(t, err)
		require.Equal(t, int64(2), id2)

		_, err = store.Get(ctx, 99)
		require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
	})

	t.Run("ConcurrentIDsAreUnique", func(t *testing.T) {
		store := newStore(t)
		var mu sync.Mutex
		var ids []int64
		eg, ctx := errgroup.WithContext(t.Context())
		for i := 0; i < stressWorkers; i++ {
			eg.Go(func() error {
				id, err := store.Create(ctx, roomy.Reservation{Room: "R1", Activity: "Yoga", Day: 1, Hour: 9, Duration: 1})
				if err != nil {
					return err
				}
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, eg.Wait())
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for i, id := range ids {
			require.Equal(t, int64(i+1), id)
		}
	})
}
