package roomyhttp

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomymem"
	"github.com/castaneai/roomy/roomytest"
)

func TestRoomStoreOverHTTP(t *testing.T) {
	roomytest.RunRoomStoreTests(t, func(t *testing.T, policy roomy.SlotPolicy) roomy.RoomStore {
		server := httptest.NewServer(NewRoomHandler(roomymem.NewRoomStore(roomymem.WithSlotPolicy(policy)), zap.NewNop()))
		t.Cleanup(server.Close)
		return NewRoomClient(server.URL)
	})
}

func TestActivityRegistryOverHTTP(t *testing.T) {
	roomytest.RunActivityRegistryTests(t, func(t *testing.T) roomy.ActivityRegistry {
		server := httptest.NewServer(NewActivityHandler(roomymem.NewActivityRegistry(), zap.NewNop()))
		t.Cleanup(server.Close)
		return NewActivityClient(server.URL)
	})
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRoomHTMLResponses(t *testing.T) {
	server := httptest.NewServer(NewRoomHandler(roomymem.NewRoomStore(), zap.NewNop()))
	defer server.Close()

	resp, body := get(t, server.URL+"/add?name=R1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, contentTypeHTML, resp.Header.Get("Content-Type"))
	require.True(t, resp.Close)
	require.Contains(t, body, "<html>")
	require.Contains(t, body, "Room R1 added.")

	resp, body = get(t, server.URL+"/add?name=R1")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body, "room R1 already exists")

	resp, body = get(t, server.URL+"/reserve?name=R1&day=2&hour=10&duration=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Room R1 reserved for day 2 at 10:00 for 2 hours.")

	resp, _ = get(t, server.URL+"/reserve?name=R1&day=2&hour=11&duration=1")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = get(t, server.URL+"/checkavailability?name=R1&day=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Available hours for room R1 on day 2: 9, 12, 13, 14, 15, 16, 17")

	resp, body = get(t, server.URL+"/checkavailability?name=R1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, roomy.DaysPerWeek, strings.Count(body, "Available hours for room R1"))

	resp, _ = get(t, server.URL+"/checkavailability?name=R2&day=2")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedRequests(t *testing.T) {
	server := httptest.NewServer(NewRoomHandler(roomymem.NewRoomStore(), zap.NewNop()))
	defer server.Close()

	for _, path := range []string{
		"/add",
		"/reserve?name=R1&day=two&hour=10&duration=1",
		"/reserve?name=R1&day=2&hour=10",
		"/checkavailability?name=R1&day=9",
		"/release?name=R1",
	} {
		resp, _ := get(t, server.URL+path)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}

	resp, _ := get(t, server.URL+"/unknown")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err := http.Post(server.URL+"/add?name=R1", "text/plain", nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestJSONEnvelope(t *testing.T) {
	server := httptest.NewServer(NewActivityHandler(roomymem.NewActivityRegistry(), zap.NewNop()))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/check?name=Yoga", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", contentTypeJSON)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, contentTypeJSON, resp.Header.Get("Content-Type"))
	require.JSONEq(t, `{"status": "activity_not_found", "message": "Activity Yoga does not exist."}`, string(body))
}

func TestOneRequestPerConnection(t *testing.T) {
	server := httptest.NewServer(NewRoomHandler(roomymem.NewRoomStore(), zap.NewNop()))
	defer server.Close()

	conn, err := net.Dial("tcp", server.Listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = io.WriteString(conn, "GET /add?name=R1 HTTP/1.1\r\nHost: roomy\r\n\r\n")
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "Room R1 added.")
	require.True(t, resp.Close)

	// the server hangs up after answering
	_, err = conn.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)
}
