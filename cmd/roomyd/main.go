// Command roomyd runs the room, activity and reservation services in one process.
// The reservation service still reaches the other two over the network.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/castaneai/roomy/roomyserver"
)

const serviceName = "roomyd"

type config struct {
	roomyserver.CommonConfig
	Room        roomyserver.RoomConfig        `envconfig:"ROOM"`
	Activity    roomyserver.ActivityConfig    `envconfig:"ACTIVITY"`
	Reservation roomyserver.ReservationConfig `envconfig:"RESERVATION"`
}

func main() {
	var conf config
	envconfig.MustProcess("ROOMY", &conf)
	logger, err := roomyserver.NewLogger(conf.LogLevel, conf.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info(fmt.Sprintf("starting roomyd with config: %+v", conf))

	ctx, shutdown := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer shutdown()
	if err := run(ctx, conf, logger); err != nil {
		logger.Fatal("roomyd failed", zap.Error(err))
	}
}

func run(ctx context.Context, conf config, logger *zap.Logger) error {
	shutdownMetrics, err := roomyserver.SetupMeterProvider(ctx, conf.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()

	fs := afero.NewOsFs()
	room, err := roomyserver.NewRoomService(ctx, conf.Room, fs, logger.Named("room"))
	if err != nil {
		return err
	}
	defer room.Close()
	activity, err := roomyserver.NewActivityService(ctx, conf.Activity, fs, logger.Named("activity"))
	if err != nil {
		return err
	}
	defer activity.Close()
	reservation, err := roomyserver.NewReservationService(conf.Reservation, logger.Named("reservation"))
	if err != nil {
		return err
	}
	defer reservation.Close()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return roomyserver.Serve(ctx, fmt.Sprintf(":%s", conf.Room.ListenPort), room.Handler, logger.Named("room"))
	})
	eg.Go(func() error {
		return roomyserver.Serve(ctx, fmt.Sprintf(":%s", conf.Activity.ListenPort), activity.Handler, logger.Named("activity"))
	})
	eg.Go(func() error {
		return roomyserver.Serve(ctx, fmt.Sprintf(":%s", conf.Reservation.ListenPort), reservation.Handler, logger.Named("reservation"))
	})
	return eg.Wait()
}
