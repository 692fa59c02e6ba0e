package roomyhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

const defaultClientTimeout = 5 * time.Second

type ClientOption func(*resty.Client)

// WithTimeout bounds a whole request, including reading the response body.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *resty.Client) {
		c.SetLogger(logger.Sugar())
	}
}

type caller struct {
	client *resty.Client
}

func newCaller(baseURL string, opts []ClientOption) *caller {
	// retries belong to the caller, which knows which operations are safe to repeat
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultClientTimeout).
		SetRetryCount(0).
		SetHeader("Accept", contentTypeJSON).
		SetLogger(zap.NewNop().Sugar())
	for _, opt := range opts {
		opt(client)
	}
	return &caller{client: client}
}

// get issues one request. Transport failures and unreadable answers are ErrorStatusUpstreamUnavailable,
// rejections keep the status the service answered with.
func (c *caller) get(ctx context.Context, path string, params map[string]string, out any) error {
	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&env).
		SetError(&env).
		Get(path)
	if err != nil {
		return roomy.NewError(roomy.ErrorStatusUpstreamUnavailable, fmt.Errorf("failed to call %s: %w", path, err))
	}
	if resp.IsError() {
		status, ok := roomy.ParseErrorStatus(env.Status)
		if !ok {
			status = statusFromHTTP(resp.StatusCode())
		}
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("%s answered %s", path, resp.Status())
		}
		return roomy.NewError(status, errors.New(msg))
	}
	if env.Status != statusOK {
		return roomy.Errorf(roomy.ErrorStatusUpstreamUnavailable, "malformed response from %s (status: %s)", path, resp.Status())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return roomy.NewError(roomy.ErrorStatusUpstreamUnavailable, fmt.Errorf("failed to decode response from %s: %w", path, err))
		}
	}
	return nil
}

// RoomClient talks to a room service over the text protocol.
type RoomClient struct {
	c *caller
}

var _ roomy.RoomStore = (*RoomClient)(nil)

func NewRoomClient(baseURL string, opts ...ClientOption) *RoomClient {
	return &RoomClient{c: newCaller(baseURL, opts)}
}

func (c *RoomClient) AddRoom(ctx context.Context, name string) error {
	return c.c.get(ctx, "/add", map[string]string{"name": name}, nil)
}

func (c *RoomClient) RemoveRoom(ctx context.Context, name string) error {
	return c.c.get(ctx, "/remove", map[string]string{"name": name}, nil)
}

func (c *RoomClient) ReserveSlot(ctx context.Context, req roomy.ReserveSlotRequest) (*roomy.ReserveSlotResponse, error) {
	params := map[string]string{
		"name":     req.Name,
		"day":      strconv.Itoa(req.Day),
		"hour":     strconv.Itoa(req.Hour),
		"duration": strconv.Itoa(req.Duration),
	}
	if req.HoldID != "" {
		params["hold"] = req.HoldID
	}
	var resp roomy.ReserveSlotResponse
	if err := c.c.get(ctx, "/reserve", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RoomClient) ReleaseSlot(ctx context.Context, req roomy.ReleaseSlotRequest) (*roomy.ReleaseSlotResponse, error) {
	var resp roomy.ReleaseSlotResponse
	if err := c.c.get(ctx, "/release", map[string]string{"name": req.Name, "hold": req.HoldID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RoomClient) QueryAvailability(ctx context.Context, req roomy.QueryAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	params := map[string]string{"name": req.Name}
	if req.Day != 0 {
		params["day"] = strconv.Itoa(req.Day)
	}
	var resp roomy.QueryAvailabilityResponse
	if err := c.c.get(ctx, "/checkavailability", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RoomClient) ListRooms(ctx context.Context) ([]string, error) {
	var resp roomList
	if err := c.c.get(ctx, "/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// ActivityClient talks to an activity service over the text protocol.
type ActivityClient struct {
	c *caller
}

var _ roomy.ActivityRegistry = (*ActivityClient)(nil)

func NewActivityClient(baseURL string, opts ...ClientOption) *ActivityClient {
	return &ActivityClient{c: newCaller(baseURL, opts)}
}

func (c *ActivityClient) AddActivity(ctx context.Context, name string) error {
	return c.c.get(ctx, "/add", map[string]string{"name": name}, nil)
}

func (c *ActivityClient) RemoveActivity(ctx context.Context, name string) error {
	return c.c.get(ctx, "/remove", map[string]string{"name": name}, nil)
}

func (c *ActivityClient) Exists(ctx context.Context, name string) (bool, error) {
	err := c.c.get(ctx, "/check", map[string]string{"name": name}, nil)
	if roomy.ErrorHasStatus(err, roomy.ErrorStatusActivityNotFound) {
		return false, nil
	}
	// any other 404 comes from something that is not an activity service
	if roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound) {
		return false, roomy.NewError(roomy.ErrorStatusUpstreamUnavailable, fmt.Errorf("activity check failed: %w", err))
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *ActivityClient) ListActivities(ctx context.Context) ([]string, error) {
	var resp activityList
	if err := c.c.get(ctx, "/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activities, nil
}

// ReservationClient talks to a reservation service over the text protocol.
type ReservationClient struct {
	c *caller
}

var _ roomy.Coordinator = (*ReservationClient)(nil)

func NewReservationClient(baseURL string, opts ...ClientOption) *ReservationClient {
	return &ReservationClient{c: newCaller(baseURL, opts)}
}

func (c *ReservationClient) Reserve(ctx context.Context, req roomy.ReserveRequest) (*roomy.ReserveResponse, error) {
	var r roomy.Reservation
	if err := c.c.get(ctx, "/reserve", map[string]string{
		"room":     req.Room,
		"activity": req.Activity,
		"day":      strconv.Itoa(req.Day),
		"hour":     strconv.Itoa(req.Hour),
		"duration": strconv.Itoa(req.Duration),
	}, &r); err != nil {
		return nil, err
	}
	return &roomy.ReserveResponse{Reservation: r}, nil
}

func (c *ReservationClient) ListAvailability(ctx context.Context, req roomy.ListAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	params := map[string]string{"room": req.Room}
	if req.Day != 0 {
		params["day"] = strconv.Itoa(req.Day)
	}
	var resp roomy.QueryAvailabilityResponse
	if err := c.c.get(ctx, "/listavailability", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ReservationClient) Display(ctx context.Context, id int64) (*roomy.Reservation, error) {
	var r roomy.Reservation
	if err := c.c.get(ctx, "/display", map[string]string{"id": strconv.FormatInt(id, 10)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
