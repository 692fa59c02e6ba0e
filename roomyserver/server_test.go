package roomyserver

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomyconnect"
	"github.com/castaneai/roomy/roomyhttp"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ROOMY_PORT", "9001")
	t.Setenv("ROOMY_SLOT_POLICY", "inclusive")
	t.Setenv("ROOMY_BACKEND", "redis")
	var room RoomConfig
	require.NoError(t, envconfig.Process("ROOMY", &room))
	require.Equal(t, "9001", room.ListenPort)
	require.Equal(t, roomy.SlotPolicyInclusive, room.SlotPolicy)
	require.Equal(t, BackendRedis, room.Backend)
	require.Equal(t, "roomy:", room.RedisKeyPrefix)
	require.Equal(t, "room.txt", room.NameLog)

	var reservation ReservationConfig
	t.Setenv("ROOMY_CALL_TIMEOUT", "750ms")
	require.NoError(t, envconfig.Process("ROOMY", &reservation))
	require.Equal(t, 750*time.Millisecond, reservation.CallTimeout)
	require.Equal(t, 2, reservation.MaxRetries)
	require.Equal(t, UpstreamProtocolText, reservation.UpstreamProtocol)
	require.Equal(t, "http://localhost:8081", reservation.RoomServiceURL)

	t.Setenv("ROOMY_SLOT_POLICY", "sometimes")
	require.Error(t, envconfig.Process("ROOMY", &room))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", "json", "room")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger("chatty", "console", "room")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestOpenBackend(t *testing.T) {
	_, err := OpenBackend(StoreConfig{Backend: "sqlite"}, zap.NewNop())
	require.Error(t, err)

	b, err := OpenBackend(StoreConfig{Backend: BackendRedis, RedisKeyPrefix: "test:"}, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()
	ctx := t.Context()
	id, err := b.ReservationStore().Create(ctx, roomy.Reservation{Room: "R1", Activity: "Yoga", Day: 1, Hour: 9, Duration: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.NoError(t, b.ActivityRegistry().AddActivity(ctx, "Yoga"))
	require.NoError(t, b.RoomStore(roomy.SlotPolicyExact).AddRoom(ctx, "R1"))
}

type cluster struct {
	roomURL        string
	activityURL    string
	reservationURL string
	fs             afero.Fs
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

// startCluster runs the three services like roomyd does.
func startCluster(t *testing.T, protocol string) *cluster {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	logger := zap.NewNop()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "room.txt", []byte("R1\n\nR1\nR2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "activities.txt", []byte("Yoga\n"), 0o644))

	roomLis, activityLis, reservationLis := listen(t), listen(t), listen(t)
	c := &cluster{
		roomURL:        "http://" + roomLis.Addr().String(),
		activityURL:    "http://" + activityLis.Addr().String(),
		reservationURL: "http://" + reservationLis.Addr().String(),
		fs:             fs,
	}

	room, err := NewRoomService(ctx, RoomConfig{NameLog: "room.txt", SlotPolicy: roomy.SlotPolicyExact, StoreConfig: StoreConfig{Backend: BackendMemory}}, fs, logger)
	require.NoError(t, err)
	activity, err := NewActivityService(ctx, ActivityConfig{NameLog: "activities.txt", StoreConfig: StoreConfig{Backend: BackendRedis, RedisKeyPrefix: "test:"}}, fs, logger)
	require.NoError(t, err)
	reservation, err := NewReservationService(ReservationConfig{
		RoomServiceURL:     c.roomURL,
		ActivityServiceURL: c.activityURL,
		UpstreamProtocol:   protocol,
		CallTimeout:        time.Second,
		MaxRetries:         1,
		StoreConfig:        StoreConfig{Backend: BackendMemory},
	}, logger)
	require.NoError(t, err)

	eg := &errgroup.Group{}
	eg.Go(func() error { return ServeListener(ctx, roomLis, room.Handler, logger) })
	eg.Go(func() error { return ServeListener(ctx, activityLis, activity.Handler, logger) })
	eg.Go(func() error { return ServeListener(ctx, reservationLis, reservation.Handler, logger) })
	t.Cleanup(func() {
		cancel()
		require.NoError(t, eg.Wait())
		reservation.Close()
		activity.Close()
		room.Close()
	})
	return c
}

func TestClusterOverText(t *testing.T) {
	ctx := t.Context()
	c := startCluster(t, UpstreamProtocolText)

	rooms := roomyhttp.NewRoomClient(c.roomURL)
	names, err := rooms.ListRooms(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"R1", "R2"}, names)

	reservations := roomyhttp.NewReservationClient(c.reservationURL)
	resp, err := reservations.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 2, Hour: 10, Duration: 1})
	require.NoError(t, err)
	r, err := reservations.Display(ctx, resp.Reservation.ID)
	require.NoError(t, err)
	require.Equal(t, "R1", r.Room)

	_, err = reservations.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Boxing", Day: 2, Hour: 11, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusActivityNotFound), "%+v", err)

	// added names are journaled
	require.NoError(t, roomyhttp.NewActivityClient(c.activityURL).AddActivity(ctx, "Boxing"))
	data, err := afero.ReadFile(c.fs, "activities.txt")
	require.NoError(t, err)
	require.Equal(t, "Yoga\nBoxing\n", string(data))
	_, err = reservations.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Boxing", Day: 2, Hour: 11, Duration: 1})
	require.NoError(t, err)

	require.NoError(t, rooms.RemoveRoom(ctx, "R2"))
	data, err = afero.ReadFile(c.fs, "room.txt")
	require.NoError(t, err)
	require.Equal(t, "R1\n", string(data))
}

func TestClusterOverConnect(t *testing.T) {
	ctx := t.Context()
	c := startCluster(t, UpstreamProtocolConnect)

	// the same port serves both protocols
	reservations := roomyconnect.NewReservationClient(http.DefaultClient, c.reservationURL)
	resp, err := reservations.Reserve(ctx, roomy.ReserveRequest{Room: "R2", Activity: "Yoga", Day: 7, Hour: 16, Duration: 2})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Reservation.BookedHours)

	avail, err := roomyhttp.NewReservationClient(c.reservationURL).ListAvailability(ctx, roomy.ListAvailabilityRequest{Room: "R2", Day: 7})
	require.NoError(t, err)
	require.Equal(t, []int{9, 10, 11, 12, 13, 14, 15}, avail.Days[0].FreeHours)

	_, err = reservations.Reserve(ctx, roomy.ReserveRequest{Room: "R2", Activity: "Yoga", Day: 7, Hour: 17, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusRoomUnavailable), "%+v", err)
}

func TestUnknownUpstreamProtocol(t *testing.T) {
	_, err := NewReservationService(ReservationConfig{UpstreamProtocol: "smoke", StoreConfig: StoreConfig{Backend: BackendMemory}}, zap.NewNop())
	require.Error(t, err)
}
