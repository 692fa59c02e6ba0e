package roomyconnect

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomycoord"
	"github.com/castaneai/roomy/roomymem"
	"github.com/castaneai/roomy/roomytest"
)

func newServer(t *testing.T, path string, handler http.Handler) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRoomStoreOverConnect(t *testing.T) {
	roomytest.RunRoomStoreTests(t, func(t *testing.T, policy roomy.SlotPolicy) roomy.RoomStore {
		path, handler := NewRoomServiceHandler(roomymem.NewRoomStore(roomymem.WithSlotPolicy(policy)))
		server := newServer(t, path, handler)
		return NewRoomClient(server.Client(), server.URL)
	})
}

func TestActivityRegistryOverConnect(t *testing.T) {
	roomytest.RunActivityRegistryTests(t, func(t *testing.T) roomy.ActivityRegistry {
		path, handler := NewActivityServiceHandler(roomymem.NewActivityRegistry())
		server := newServer(t, path, handler)
		return NewActivityClient(server.Client(), server.URL)
	})
}

func TestReservationOverConnect(t *testing.T) {
	ctx := t.Context()
	rooms := roomymem.NewRoomStore()
	activities := roomymem.NewActivityRegistry()
	require.NoError(t, rooms.AddRoom(ctx, "R1"))
	require.NoError(t, activities.AddActivity(ctx, "Yoga"))
	roomPath, roomHandler := NewRoomServiceHandler(rooms)
	roomServer := newServer(t, roomPath, roomHandler)
	activityPath, activityHandler := NewActivityServiceHandler(activities)
	activityServer := newServer(t, activityPath, activityHandler)

	coordinator := roomycoord.New(
		NewActivityClient(activityServer.Client(), activityServer.URL),
		NewRoomClient(roomServer.Client(), roomServer.URL),
		roomymem.NewReservationStore(),
		roomycoord.WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
	reservationPath, reservationHandler := NewReservationServiceHandler(coordinator)
	reservationServer := newServer(t, reservationPath, reservationHandler)
	client := NewReservationClient(reservationServer.Client(), reservationServer.URL)

	resp, err := client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 2, Hour: 10, Duration: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Reservation.ID)
	r, err := client.Display(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, resp.Reservation, *r)

	avail, err := client.ListAvailability(ctx, roomy.ListAvailabilityRequest{Room: "R1", Day: 2})
	require.NoError(t, err)
	require.Equal(t, []int{9, 11, 12, 13, 14, 15, 16, 17}, avail.Days[0].FreeHours)

	// statuses sharing a connect code still come back exactly
	_, err = client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Chess", Day: 2, Hour: 12, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusActivityNotFound), "%+v", err)
	_, err = client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 2, Hour: 10, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusRoomUnavailable), "%+v", err)
	_, err = client.Display(ctx, 2)
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
	require.Equal(t, "reservation 2 does not exist", roomy.ErrorMessage(err))

	roomServer.Close()
	_, err = client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 3, Hour: 10, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)
}

func TestFromConnectError(t *testing.T) {
	testCases := []struct {
		err    error
		status roomy.ErrorStatus
	}{
		{connect.NewError(connect.CodeInvalidArgument, errors.New("bad")), roomy.ErrorStatusInvalidInput},
		{connect.NewError(connect.CodeNotFound, errors.New("gone")), roomy.ErrorStatusNotFound},
		{connect.NewError(connect.CodeAlreadyExists, errors.New("dup")), roomy.ErrorStatusAlreadyExists},
		{connect.NewError(connect.CodeFailedPrecondition, errors.New("taken")), roomy.ErrorStatusSlotConflict},
		{connect.NewError(connect.CodeUnavailable, errors.New("refused")), roomy.ErrorStatusUpstreamUnavailable},
		{connect.NewError(connect.CodeDeadlineExceeded, errors.New("slow")), roomy.ErrorStatusUpstreamUnavailable},
		{connect.NewError(connect.CodeInternal, errors.New("boom")), roomy.ErrorStatusUnknown},
		{errors.New("not a connect error"), roomy.ErrorStatusUpstreamUnavailable},
		{toConnectError(roomy.Errorf(roomy.ErrorStatusRoomUnavailable, "taken")), roomy.ErrorStatusRoomUnavailable},
	}
	for _, tc := range testCases {
		err := fromConnectError(tc.err)
		require.True(t, roomy.ErrorHasStatus(err, tc.status), "%v: %+v", tc.err, err)
	}
}
