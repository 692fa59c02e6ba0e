package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomyhttp"
	"github.com/castaneai/roomy/roomyotel"
	"github.com/castaneai/roomy/roomyserver"
)

const (
	serviceName = "roomy_loadtest"
	activity    = "loadtest"
)

type config struct {
	ReservationURL string  `envconfig:"RESERVATION_SERVICE_URL" default:"http://localhost:8080"`
	RoomURL        string  `envconfig:"ROOM_SERVICE_URL" default:"http://localhost:8081"`
	ActivityURL    string  `envconfig:"ACTIVITY_SERVICE_URL" default:"http://localhost:8082"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4317"`
	Rooms          int     `envconfig:"ROOMS" default:"10"`
	Rate           float64 `envconfig:"RATE" default:"100"`
	Workers        int     `envconfig:"WORKERS" default:"8"`
}

func main() {
	var conf config
	envconfig.MustProcess("ROOMY_LOADTEST", &conf)
	logger, err := roomyserver.NewLogger("info", "console", serviceName)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, shutdown := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer shutdown()

	shutdownMetrics, err := roomyserver.SetupMeterProvider(ctx, conf.OTLPEndpoint, serviceName)
	if err != nil {
		logger.Fatal("failed to set up metrics", zap.Error(err))
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()

	rooms := roomyhttp.NewRoomClient(conf.RoomURL)
	if err := seed(ctx, rooms, roomyhttp.NewActivityClient(conf.ActivityURL), conf.Rooms); err != nil {
		logger.Fatal("failed to seed rooms and activity", zap.Error(err))
	}
	coordinator, err := roomyotel.NewCoordinator(roomyhttp.NewReservationClient(conf.ReservationURL))
	if err != nil {
		logger.Fatal("failed to create reservation client", zap.Error(err))
	}

	logger.Info("roomy loadtest is running...", zap.Float64("rate", conf.Rate), zap.Int("rooms", conf.Rooms))
	limiter := rate.NewLimiter(rate.Limit(conf.Rate), 1)
	slots := make(chan int)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(slots)
		for i := 0; ; i++ {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			select {
			case slots <- i:
			case <-ctx.Done():
				return nil
			}
		}
	})
	for range conf.Workers {
		eg.Go(func() error {
			for i := range slots {
				reserve(ctx, logger, rooms, coordinator, conf.Rooms, i)
			}
			return nil
		})
	}
	_ = eg.Wait()
	logger.Info("shutting down...")
}

func seed(ctx context.Context, rooms roomy.RoomStore, activities roomy.ActivityRegistry, n int) error {
	if err := activities.AddActivity(ctx, activity); err != nil && !roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists) {
		return err
	}
	for i := range n {
		if err := rooms.AddRoom(ctx, roomName(i)); err != nil && !roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists) {
			return err
		}
	}
	return nil
}

func roomName(i int) string {
	return fmt.Sprintf("loadtest-room-%d", i)
}

// reserve books the i-th slot of the week, cycling through rooms. A room is emptied before its week starts over.
func reserve(ctx context.Context, logger *zap.Logger, rooms roomy.RoomStore, coordinator roomy.Coordinator, n, i int) {
	const slotsPerWeek = roomy.DaysPerWeek * roomy.HoursPerDay
	room := roomName((i / slotsPerWeek) % n)
	slot := i % slotsPerWeek
	if slot == 0 {
		if err := rooms.RemoveRoom(ctx, room); err != nil && !roomy.ErrorHasStatus(err, roomy.ErrorStatusNotFound) {
			logger.Warn("failed to reset room", zap.String("room", room), zap.Error(err))
		}
		if err := rooms.AddRoom(ctx, room); err != nil && !roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists) {
			logger.Warn("failed to reset room", zap.String("room", room), zap.Error(err))
		}
	}
	_, err := coordinator.Reserve(ctx, roomy.ReserveRequest{
		Room:     room,
		Activity: activity,
		Day:      slot/roomy.HoursPerDay + 1,
		Hour:     slot%roomy.HoursPerDay + roomy.FirstHour,
		Duration: 1,
	})
	if err != nil && ctx.Err() == nil {
		logger.Warn("failed to reserve room", zap.String("room", room), zap.Error(err))
	}
}
