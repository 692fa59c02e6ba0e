package roomyredis

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/require"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomytest"
)

const (
	testingKeyPrefix = "roomytest:"
)

func TestRoomStore(t *testing.T) {
	roomytest.RunRoomStoreTests(t, func(t *testing.T, policy roomy.SlotPolicy) roomy.RoomStore {
		client, _ := newRedisClientWithMiniRedis(t)
		return NewRoomStore(testingKeyPrefix, client, WithSlotPolicy(policy))
	})
}

func TestActivityRegistry(t *testing.T) {
	roomytest.RunActivityRegistryTests(t, func(t *testing.T) roomy.ActivityRegistry {
		client, _ := newRedisClientWithMiniRedis(t)
		return NewActivityRegistry(testingKeyPrefix, client)
	})
}

func TestReservationStore(t *testing.T) {
	roomytest.RunReservationStoreTests(t, func(t *testing.T) roomy.ReservationStore {
		client, _ := newRedisClientWithMiniRedis(t)
		return NewReservationStore(testingKeyPrefix, client)
	})
}

func TestGridLayout(t *testing.T) {
	ctx := t.Context()
	client, mr := newRedisClientWithMiniRedis(t)
	store := NewRoomStore(testingKeyPrefix, client)
	require.NoError(t, store.AddRoom(ctx, "R1"))
	_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 2, Hour: 10, Duration: 2, HoldID: "h1"})
	require.NoError(t, err)

	gridKey := redisKeyRoomGrid(testingKeyPrefix, "R1")
	require.Equal(t, "h1", mr.HGet(gridKey, "2:10"))
	require.Equal(t, "h1", mr.HGet(gridKey, "2:11"))
	require.False(t, mr.Exists(redisKeyRoomGrid(testingKeyPrefix, "R2")))

	// removing the room drops its grid
	require.NoError(t, store.RemoveRoom(ctx, "R1"))
	require.False(t, mr.Exists(gridKey))
}

func TestRoomKeysShareSlot(t *testing.T) {
	ctx := t.Context()
	client, mr := newRedisClientWithMiniRedis(t)
	store := NewRoomStore(testingKeyPrefix, client)
	for _, name := range []string{"R1", "R2", "Conference A"} {
		require.True(t, strings.HasPrefix(redisKeyRoomGrid(testingKeyPrefix, name), testingKeyPrefix+"{rooms}:"))
		require.NotPanics(t, func() {
			require.NoError(t, store.AddRoom(ctx, name))
			_, err := store.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: name, Day: 1, Hour: 9, Duration: 1, HoldID: "h"})
			require.NoError(t, err)
			_, err = store.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: name, Day: 1})
			require.NoError(t, err)
			_, err = store.ReleaseSlot(ctx, roomy.ReleaseSlotRequest{Name: name, HoldID: "h"})
			require.NoError(t, err)
		})
	}
	require.True(t, mr.Exists(testingKeyPrefix+"{rooms}:names"))
	members, err := mr.Members(redisKeyRooms(testingKeyPrefix))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"R1", "R2", "Conference A"}, members)
}

func TestSharedSequenceAcrossStores(t *testing.T) {
	ctx := t.Context()
	client, _ := newRedisClientWithMiniRedis(t)
	// two coordinators on the same Redis
	a := NewReservationStore(testingKeyPrefix, client)
	b := NewReservationStore(testingKeyPrefix, client)
	r := roomy.Reservation{Room: "R1", Activity: "Yoga", Day: 1, Hour: 9, Duration: 1, BookedHours: 1}
	id1, err := a.Create(ctx, r)
	require.NoError(t, err)
	id2, err := b.Create(ctx, r)
	require.NoError(t, err)
	require.Equal(t, int64(1), id1)
	require.Equal(t, int64(2), id2)
	got, err := a.Get(ctx, id2)
	require.NoError(t, err)
	require.Equal(t, id2, got.ID)
}

func TestCorruptReservation(t *testing.T) {
	ctx := t.Context()
	client, mr := newRedisClientWithMiniRedis(t)
	store := NewReservationStore(testingKeyPrefix, client)
	mr.HSet(redisKeyReservation(testingKeyPrefix, 7), redisHashFieldRoom, "R1", redisHashFieldActivity, "Yoga", redisHashFieldDay, "x")
	_, err := store.Get(ctx, 7)
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUnknown), "%+v", err)
}

func newRedisClientWithMiniRedis(t *testing.T) (rueidis.Client, *miniredis.Miniredis) {
	t.Helper()
	r := miniredis.RunT(t)
	t.Cleanup(func() { r.Close() })
	client, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{r.Addr()}, DisableCache: true})
	if err != nil {
		t.Fatalf("failed to create redis client: %+v", err)
	}
	t.Cleanup(client.Close)
	return client, r
}
