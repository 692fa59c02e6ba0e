// Package roomycoord books a room for an activity across the activity and room services.
//
// A reservation is a saga of three steps: an activity existence check, a slot reservation
// carrying a fresh hold id, and the allocation of a reservation record. There is no atomic
// commit across services. When the slot reservation outcome is unknown (the room service timed
// out or could not be reached) or the record cannot be stored, the coordinator releases the
// hold on a best-effort basis. Releasing a hold only frees slots carrying that hold, so the
// compensation never touches another reservation.
package roomycoord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

const (
	defaultCallTimeout    = 2 * time.Second
	defaultMaxRetries     = 2
	defaultInitialBackoff = 50 * time.Millisecond
	defaultMaxBackoff     = time.Second
)

var _ roomy.Coordinator = (*Coordinator)(nil)

type Coordinator struct {
	activities     roomy.ActivityRegistry
	rooms          roomy.RoomStore
	reservations   roomy.ReservationStore
	logger         *zap.Logger
	callTimeout    time.Duration
	maxRetries     uint64
	initialBackoff time.Duration
	maxBackoff     time.Duration
	newHoldID      func() string
}

type Option func(*Coordinator)

// WithCallTimeout bounds every single upstream call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.callTimeout = d
	}
}

// WithMaxRetries sets how often a call that ended in ErrorStatusUpstreamUnavailable is retried.
func WithMaxRetries(n int) Option {
	return func(c *Coordinator) {
		if n < 0 {
			n = 0
		}
		c.maxRetries = uint64(n)
	}
}

func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(c *Coordinator) {
		c.initialBackoff = initial
		c.maxBackoff = maxInterval
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func withHoldIDGenerator(f func() string) Option {
	return func(c *Coordinator) {
		c.newHoldID = f
	}
}

func New(activities roomy.ActivityRegistry, rooms roomy.RoomStore, reservations roomy.ReservationStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		activities:     activities,
		rooms:          rooms,
		reservations:   reservations,
		logger:         zap.NewNop(),
		callTimeout:    defaultCallTimeout,
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		newHoldID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Reserve(ctx context.Context, req roomy.ReserveRequest) (*roomy.ReserveResponse, error) {
	if err := validateReserveRequest(req); err != nil {
		return nil, err
	}
	logger := c.logger.With(zap.String("room", req.Room), zap.String("activity", req.Activity),
		zap.Int("day", req.Day), zap.Int("hour", req.Hour), zap.Int("duration", req.Duration))

	var exists bool
	if err := c.call(ctx, "activity.exists", func(ctx context.Context) error {
		var err error
		exists, err = c.activities.Exists(ctx, req.Activity)
		return err
	}); err != nil {
		logger.Warn("activity check failed", zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, roomy.Errorf(roomy.ErrorStatusActivityNotFound, "activity %s does not exist", req.Activity)
	}

	holdID := c.newHoldID()
	logger = logger.With(zap.String("hold_id", holdID))
	var booked *roomy.ReserveSlotResponse
	err := c.call(ctx, "room.reserve", func(ctx context.Context) error {
		var err error
		booked, err = c.rooms.ReserveSlot(ctx, roomy.ReserveSlotRequest{
			Name:     req.Room,
			Day:      req.Day,
			Hour:     req.Hour,
			Duration: req.Duration,
			HoldID:   holdID,
		})
		return err
	})
	if err != nil {
		switch roomy.StatusOf(err) {
		case roomy.ErrorStatusSlotConflict:
			return nil, roomy.NewError(roomy.ErrorStatusRoomUnavailable, fmt.Errorf("room %s is not available: %w", req.Room, err))
		case roomy.ErrorStatusNotFound, roomy.ErrorStatusInvalidInput:
			return nil, err
		}
		// the room service may have applied the reservation before failing
		logger.Warn("room reservation outcome unknown, releasing hold", zap.Error(err))
		c.compensate(ctx, logger, req.Room, holdID)
		return nil, err
	}

	r := roomy.Reservation{
		Room:        req.Room,
		Activity:    req.Activity,
		Day:         req.Day,
		Hour:        req.Hour,
		Duration:    req.Duration,
		BookedHours: booked.Hours,
		HoldID:      booked.HoldID,
	}
	id, err := c.reservations.Create(ctx, r)
	if err != nil {
		logger.Error("failed to store reservation, releasing hold", zap.Error(err))
		c.compensate(ctx, logger, req.Room, holdID)
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}
	r.ID = id
	logger.Info("room reserved", zap.Int64("reservation_id", id), zap.Int("booked_hours", r.BookedHours))
	return &roomy.ReserveResponse{Reservation: r}, nil
}

func (c *Coordinator) ListAvailability(ctx context.Context, req roomy.ListAvailabilityRequest) (*roomy.QueryAvailabilityResponse, error) {
	if req.Room == "" {
		return nil, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room"))
	}
	if req.Day != 0 {
		if err := roomy.ValidateDay(req.Day); err != nil {
			return nil, err
		}
	}
	var resp *roomy.QueryAvailabilityResponse
	if err := c.call(ctx, "room.availability", func(ctx context.Context) error {
		var err error
		resp, err = c.rooms.QueryAvailability(ctx, roomy.QueryAvailabilityRequest{Name: req.Room, Day: req.Day})
		return err
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Coordinator) Display(ctx context.Context, id int64) (*roomy.Reservation, error) {
	if id <= 0 {
		return nil, roomy.Errorf(roomy.ErrorStatusInvalidInput, "reservation id must be positive: %d", id)
	}
	return c.reservations.Get(ctx, id)
}

// call runs fn under the per-call timeout. Only ErrorStatusUpstreamUnavailable is retried;
// answers from the upstream service are returned as they are.
func (c *Coordinator) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialBackoff
	eb.MaxInterval = c.maxBackoff
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, c.maxRetries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
		err := classifyCallError(op, fn(callCtx))
		if err == nil {
			return nil
		}
		if !roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("upstream call failed", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, b)
	return classifyCallError(op, err)
}

func (c *Coordinator) compensate(ctx context.Context, logger *zap.Logger, room, holdID string) {
	// the caller's context may already be done, compensation gets its own budget
	ctx = context.WithoutCancel(ctx)
	var resp *roomy.ReleaseSlotResponse
	if err := c.call(ctx, "room.release", func(ctx context.Context) error {
		var err error
		resp, err = c.rooms.ReleaseSlot(ctx, roomy.ReleaseSlotRequest{Name: room, HoldID: holdID})
		return err
	}); err != nil {
		logger.Error("failed to release hold, slots may stay booked without a reservation", zap.Error(err))
		return
	}
	logger.Info("hold released", zap.Int("released", resp.Released))
}

func classifyCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if !roomy.ErrorHasStatus(err, roomy.ErrorStatusUpstreamUnavailable) {
			return roomy.NewError(roomy.ErrorStatusUpstreamUnavailable, fmt.Errorf("%s: %w", op, err))
		}
	}
	return err
}

func validateReserveRequest(req roomy.ReserveRequest) error {
	if req.Room == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing room"))
	}
	if req.Activity == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity"))
	}
	if err := roomy.ValidateDay(req.Day); err != nil {
		return err
	}
	if req.Hour < roomy.FirstHour || req.Hour > roomy.LastHour {
		return roomy.Errorf(roomy.ErrorStatusInvalidInput, "hour must be between %d and %d: %d", roomy.FirstHour, roomy.LastHour, req.Hour)
	}
	if req.Duration < 1 {
		return roomy.Errorf(roomy.ErrorStatusInvalidInput, "duration must be positive: %d", req.Duration)
	}
	return nil
}
