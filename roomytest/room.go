// Package roomytest holds behaviour suites shared by every store implementation.
package roomytest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/castaneai/roomy"
)

const stressWorkers = 64

type NewRoomStoreFunc func(t *testing.T, policy roomy.SlotPolicy) roomy.RoomStore

func RunRoomStoreTests(t *testing.T, newStore NewRoomStoreFunc) {
	t.Run("AddRemove", func(t *testing.T) { testAddRemove(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("ReserveThenQuery", func(t *testing.T) { testReserveThenQuery(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("OverlapConflict", func(t *testing.T) { testOverlapConflict(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("InclusivePolicy", func(t *testing.T) { testInclusivePolicy(t, newStore(t, roomy.SlotPolicyInclusive)) })
	t.Run("InvalidRange", func(t *testing.T) { testInvalidRange(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("SameHoldIsIdempotent", func(t *testing.T) { testSameHold(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("Release", func(t *testing.T) { testRelease(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("AllDays", func(t *testing.T) { testAllDays(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("ConcurrentSameSlot", func(t *testing.T) { testConcurrentSameSlot(t, newStore(t, roomy.SlotPolicyExact)) })
	t.Run("ConcurrentDisjointSlots", func(t *testing.T) { testConcurrentDisjoint(t, newStore(t, roomy.SlotPolicyExact)) })
}

func testAddRemove(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	err := store.AddRoom(ctx, "R1")
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists), "%+v", err)

	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 3, Hour: 9, Duration: 4})
	require.NoError(t, err)

	// remove then add yields a fully free grid again
	require.NoError(t, store.RemoveRoom(ctx, "R1"))
	err = store.RemoveRoom(ctx, "R1")
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
	_, err = store.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: "R1", Day: 3})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)

	require.NoError(t, store.AddRoom(ctx, "R1"))
	require.Equal(t, allHours(), freeHours(t, store, "R1", 3))

	require.NoError(t, store.AddRoom(ctx, "R0"))
	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"R0", "R1"}, rooms)

	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "missing", Day: 1, Hour: 9, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
}

func testReserveThenQuery(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))

	resp, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 2, Hour: 10, Duration: 2, HoldID: "h1"})
	require.NoError(t, err)
	require.Equal(t, roomy.ReserveSlotResponse{Name: "R1", Day: 2, Hour: 10, Hours: 2, HoldID: "h1"}, *resp)
	require.Equal(t, []int{9, 12, 13, 14, 15, 16, 17}, freeHours(t, store, "R1", 2))
	// other days are untouched
	require.Equal(t, allHours(), freeHours(t, store, "R1", 1))

	generated, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 2, Hour: 17, Duration: 1})
	require.NoError(t, err)
	require.NotEmpty(t, generated.HoldID)
	require.Equal(t, []int{9, 12, 13, 14, 15, 16}, freeHours(t, store, "R1", 2))
}

func testOverlapConflict(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 4, Hour: 12, Duration: 2, HoldID: "h1"})
	require.NoError(t, err)
	before := freeHours(t, store, "R1", 4)

	// the request overlaps only in its last hour, nothing may be booked
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 4, Hour: 10, Duration: 3, HoldID: "h2"})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusSlotConflict), "%+v", err)
	require.Equal(t, before, freeHours(t, store, "R1", 4))

	// failing again changes nothing either
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 4, Hour: 13, Duration: 1, HoldID: "h3"})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusSlotConflict), "%+v", err)
	require.Equal(t, before, freeHours(t, store, "R1", 4))

	// adjacent slots are fine
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 4, Hour: 14, Duration: 1, HoldID: "h4"})
	require.NoError(t, err)
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 4, Hour: 11, Duration: 1, HoldID: "h5"})
	require.NoError(t, err)
}

func testInclusivePolicy(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))

	// duration=1 books the starting hour and the following one
	resp, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 1, Hour: 9, Duration: 1})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Hours)
	require.Equal(t, []int{11, 12, 13, 14, 15, 16, 17}, freeHours(t, store, "R1", 1))

	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 1, Hour: 17, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusInvalidInput), "%+v", err)
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 1, Hour: 16, Duration: 1})
	require.NoError(t, err)
}

func testInvalidRange(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	for _, req := range []roomy.ReserveSlotRequest{
		{Name: "R1", Day: 0, Hour: 10, Duration: 1},
		{Name: "R1", Day: 8, Hour: 10, Duration: 1},
		{Name: "R1", Day: 1, Hour: 8, Duration: 1},
		{Name: "R1", Day: 1, Hour: 18, Duration: 1},
		{Name: "R1", Day: 1, Hour: 16, Duration: 3},
		{Name: "R1", Day: 1, Hour: 10, Duration: 0},
	} {
		_, err := store.ReserveSlot(ctx, req)
		require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusInvalidInput), "%+v: %+v", req, err)
	}
	_, err := store.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: "R1", Day: 9})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusInvalidInput), "%+v", err)
	require.Equal(t, allHours(), freeHours(t, store, "R1", 1))
}

func testSameHold(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	req := roomy.ReserveSlotRequest{Name: "R1", Day: 5, Hour: 9, Duration: 3, HoldID: "retry"}
	_, err := store.ReserveSlot(ctx, req)
	require.NoError(t, err)
	// a retried request carrying the same hold succeeds without booking anything new
	_, err = store.ReserveSlot(ctx, req)
	require.NoError(t, err)
	require.Equal(t, []int{12, 13, 14, 15, 16, 17}, freeHours(t, store, "R1", 5))
}

func testRelease(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 6, Hour: 9, Duration: 2, HoldID: "mine"})
	require.NoError(t, err)
	_, err = store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 6, Hour: 11, Duration: 2, HoldID: "theirs"})
	require.NoError(t, err)

	resp, err := store.ReleaseSlot(ctx, roomy.ReleaseSlotRequest{Name: "R1", HoldID: "mine"})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Released)
	require.Equal(t, []int{9, 10, 13, 14, 15, 16, 17}, freeHours(t, store, "R1", 6))

	// releasing an unknown hold never frees anybody else's slots
	resp, err = store.ReleaseSlot(ctx, roomy.ReleaseSlotRequest{Name: "R1", HoldID: "mine"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.Released)
	require.Equal(t, []int{9, 10, 13, 14, 15, 16, 17}, freeHours(t, store, "R1", 6))

	_, err = store.ReleaseSlot(ctx, roomy.ReleaseSlotRequest{Name: "missing", HoldID: "mine"})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
}

func testAllDays(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 7, Hour: 9, Duration: 9})
	require.NoError(t, err)

	resp, err := store.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: "R1"})
	require.NoError(t, err)
	require.Len(t, resp.Days, roomy.DaysPerWeek)
	for i, day := range resp.Days {
		require.Equal(t, i+1, day.Day)
		if day.Day == 7 {
			require.Empty(t, day.FreeHours)
		} else {
			require.Equal(t, allHours(), day.FreeHours)
		}
	}
}

func testConcurrentSameSlot(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	var succeeded atomic.Int32
	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < stressWorkers; i++ {
		eg.Go(func() error {
			// every request overlaps at 11:00
			hour := 10 + i%2
			_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 1, Hour: hour, Duration: 2, HoldID: fmt.Sprintf("h%d", i)})
			if err == nil {
				succeeded.Add(1)
				return nil
			}
			if roomy.ErrorHasStatus(err, roomy.ErrorStatusSlotConflict) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, eg.Wait())
	require.Equal(t, int32(1), succeeded.Load())
	require.Len(t, freeHours(t, store, "R1", 1), roomy.HoursPerDay-2)
}

func testConcurrentDisjoint(t *testing.T, store roomy.RoomStore) {
	ctx := t.Context()
	require.NoError(t, store.AddRoom(ctx, "R1"))
	eg, ctx := errgroup.WithContext(ctx)
	for day := 1; day <= roomy.DaysPerWeek; day++ {
		for hour := roomy.FirstHour; hour <= roomy.LastHour; hour++ {
			eg.Go(func() error {
				_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: day, Hour: hour, Duration: 1})
				return err
			})
		}
	}
	require.NoError(t, eg.Wait())
	resp, err := store.QueryAvailability(context.Background(), roomy.QueryAvailabilityRequest{Name: "R1"})
	require.NoError(t, err)
	for _, day := range resp.Days {
		require.Empty(t, day.FreeHours)
	}
}

func freeHours(t *testing.T, store roomy.RoomStore, name string, day int) []int {
	t.Helper()
	resp, err := store.QueryAvailability(t.Context(), roomy.QueryAvailabilityRequest{Name: name, Day: day})
	require.NoError(t, err)
	require.Len(t, resp.Days, 1)
	require.Equal(t, day, resp.Days[0].Day)
	return resp.Days[0].FreeHours
}

func allHours() []int {
	hours := make([]int, 0, roomy.HoursPerDay)
	for h := roomy.FirstHour; h <= roomy.LastHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
