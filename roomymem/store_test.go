package roomymem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomytest"
)

func TestRoomStore(t *testing.T) {
	roomytest.RunRoomStoreTests(t, func(t *testing.T, policy roomy.SlotPolicy) roomy.RoomStore {
		return NewRoomStore(WithSlotPolicy(policy))
	})
}

func TestActivityRegistry(t *testing.T) {
	roomytest.RunActivityRegistryTests(t, func(t *testing.T) roomy.ActivityRegistry {
		return NewActivityRegistry()
	})
}

func TestReservationStore(t *testing.T) {
	roomytest.RunReservationStoreTests(t, func(t *testing.T) roomy.ReservationStore {
		return NewReservationStore()
	})
}

func TestReserveRacingRemove(t *testing.T) {
	ctx := t.Context()
	store := NewRoomStore().(*roomStore)
	require.NoError(t, store.AddRoom(ctx, "R1"))
	g, err := store.lookup("R1")
	require.NoError(t, err)
	require.NoError(t, store.RemoveRoom(ctx, "R1"))

	// the grid is tombstoned, a caller still holding it sees the room as gone
	g.mu.RLock()
	require.True(t, g.removed)
	g.mu.RUnlock()
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 1, Hour: 9, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound))
}
