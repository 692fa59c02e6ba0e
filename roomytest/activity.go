package roomytest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/castaneai/roomy"
)

func RunActivityRegistryTests(t *testing.T, newRegistry func(t *testing.T) roomy.ActivityRegistry) {
	t.Run("AddRemoveExists", func(t *testing.T) {
		ctx := t.Context()
		reg := newRegistry(t)
		exists, err := reg.Exists(ctx, "Yoga")
		require.NoError(t, err)
		require.False(t, exists)

		require.NoError(t, reg.AddActivity(ctx, "Yoga"))
		err = reg.AddActivity(ctx, "Yoga")
		require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists), "%+v", err)
		exists, err = reg.Exists(ctx, "Yoga")
		require.NoError(t, err)
		require.True(t, exists)

		require.NoError(t, reg.AddActivity(ctx, "Boxing"))
		names, err := reg.ListActivities(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Boxing", "Yoga"}, names)

		require.NoError(t, reg.RemoveActivity(ctx, "Yoga"))
		err = reg.RemoveActivity(ctx, "Yoga")
		require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
		exists, err = reg.Exists(ctx, "Yoga")
		require.NoError(t, err)
		require.False(t, exists)

		err = reg.AddActivity(ctx, "")
		require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusInvalidInput), "%+v", err)
	})

	t.Run("ConcurrentReadWrite", func(t *testing.T) {
		reg := newRegistry(t)
		require.NoError(t, reg.AddActivity(t.Context(), "stable"))
		eg, ctx := errgroup.WithContext(t.Context())
		for i := 0; i < stressWorkers; i++ {
			name := fmt.Sprintf("a%d", i)
			eg.Go(func() error {
				if err := reg.AddActivity(ctx, name); err != nil {
					return err
				}
				exists, err := reg.Exists(ctx, "stable")
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("stable activity disappeared")
				}
				return reg.RemoveActivity(ctx, name)
			})
		}
		require.NoError(t, eg.Wait())
		names, err := reg.ListActivities(t.Context())
		require.NoError(t, err)
		require.Equal(t, []string{"stable"}, names)
	})
}
