package roomyhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomycoord"
	"github.com/castaneai/roomy/roomymem"
)

type services struct {
	room        *httptest.Server
	activity    *httptest.Server
	reservation *httptest.Server
}

func startServices(t *testing.T) *services {
	t.Helper()
	logger := zap.NewNop()
	rooms := roomymem.NewRoomStore()
	activities := roomymem.NewActivityRegistry()
	require.NoError(t, rooms.AddRoom(t.Context(), "R1"))
	require.NoError(t, activities.AddActivity(t.Context(), "Yoga"))

	s := &services{
		room:     httptest.NewServer(NewRoomHandler(rooms, logger)),
		activity: httptest.NewServer(NewActivityHandler(activities, logger)),
	}
	coordinator := roomycoord.New(
		NewActivityClient(s.activity.URL),
		NewRoomClient(s.room.URL),
		roomymem.NewReservationStore(),
		roomycoord.WithCallTimeout(time.Second),
		roomycoord.WithMaxRetries(1),
		roomycoord.WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
	s.reservation = httptest.NewServer(NewReservationHandler(coordinator, logger))
	t.Cleanup(func() {
		s.reservation.Close()
		s.activity.Close()
		s.room.Close()
	})
	return s
}

func TestReservationOverHTTP(t *testing.T) {
	ctx := t.Context()
	s := startServices(t)
	client := NewReservationClient(s.reservation.URL)

	resp, err := client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 2, Hour: 10, Duration: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Reservation.ID)

	r, err := client.Display(ctx, resp.Reservation.ID)
	require.NoError(t, err)
	require.Equal(t, resp.Reservation, *r)

	avail, err := client.ListAvailability(ctx, roomy.ListAvailabilityRequest{Room: "R1", Day: 2})
	require.NoError(t, err)
	require.Equal(t, []roomy.DayAvailability{{Day: 2, FreeHours: []int{9, 11, 12, 13, 14, 15, 16, 17}}}, avail.Days)
	avail, err = client.ListAvailability(ctx, roomy.ListAvailabilityRequest{Room: "R1"})
	require.NoError(t, err)
	require.Len(t, avail.Days, roomy.DaysPerWeek)

	_, err = client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Chess", Day: 3, Hour: 10, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusActivityNotFound), "%+v", err)
	_, err = client.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 2, Hour: 10, Duration: 3})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusRoomUnavailable), "%+v", err)
	_, err = client.Reserve(ctx, roomy.ReserveRequest{Room: "R7", Activity: "Yoga", Day: 2, Hour: 10, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
	_, err = client.Display(ctx, 42)
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
	_, err = client.ListAvailability(ctx, roomy.ListAvailabilityRequest{Room: "R7"})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound), "%+v", err)
}

func TestReservationHTMLResponses(t *testing.T) {
	s := startServices(t)

	resp, body := get(t, s.reservation.URL+"/reserve?room=R1&activity=Yoga&day=2&hour=10&duration=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Room reserved. Reservation ID: 1")

	resp, body = get(t, s.reservation.URL+"/display?id=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Reservation details:")
	require.Contains(t, body, "Room name: R1")
	require.Contains(t, body, "Activity name: Yoga")

	resp, _ = get(t, s.reservation.URL+"/reserve?room=R1&activity=Yoga&day=2&hour=10&duration=1")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = get(t, s.reservation.URL+"/reserve?room=R1&activity=Chess&day=2&hour=11&duration=1")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = get(t, s.reservation.URL+"/display?id=abc")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = get(t, s.reservation.URL+"/reserve?room=R1&activity=Yoga&day=0&hour=10&duration=1")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReservationUpstreamDown(t *testing.T) {
	s := startServices(t)
	s.activity.Close()

	resp, body := get(t, s.reservation.URL+"/reserve?room=R1&activity=Yoga&day=2&hour=10&duration=1")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, body)

	// nothing was booked because the activity check never succeeded
	resp, body = get(t, s.room.URL+"/checkavailability?name=R1&day=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "9, 10, 11, 12, 13, 14, 15, 16, 17")
}

func TestClientClassifiesBrokenUpstreams(t *testing.T) {
	ctx := t.Context()
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	})
	mux.HandleFunc("/checkavailability", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		_, _ = io.WriteString(w, `{"status": "ok", "data": [`)
	})
	mux.HandleFunc("/reserve", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	mux.HandleFunc("/add", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := NewRoomClient(server.URL, WithTimeout(50*time.Millisecond))

	_, err := client.ListRooms(ctx)
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)
	_, err = client.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: "R1"})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)
	_, err = client.ReserveSlot(ctx, roomy.ReserveSlotRequest{Name: "R1", Day: 1, Hour: 9, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)

	// without a status in the body the HTTP code decides
	err = client.AddRoom(ctx, "R1")
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists), "%+v", err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = client.ListRooms(cctx)
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestActivityCheckAgainstWrongService(t *testing.T) {
	ctx := t.Context()
	s := startServices(t)

	exists, err := NewActivityClient(s.activity.URL).Exists(ctx, "Chess")
	require.NoError(t, err)
	require.False(t, exists)

	// the room service has no /check, so its 404 must not read as a missing activity
	_, err = NewActivityClient(s.room.URL).Exists(ctx, "Yoga")
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)

	coordinator := roomycoord.New(
		NewActivityClient(s.room.URL),
		NewRoomClient(s.room.URL),
		roomymem.NewReservationStore(),
		roomycoord.WithMaxRetries(0),
	)
	_, err = coordinator.Reserve(ctx, roomy.ReserveRequest{Room: "R1", Activity: "Yoga", Day: 1, Hour: 9, Duration: 1})
	require.True(t, roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable), "%+v", err)
	avail, err := NewRoomClient(s.room.URL).QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: "R1", Day: 1})
	require.NoError(t, err)
	require.Len(t, avail.Days[0].FreeHours, 9)
}
