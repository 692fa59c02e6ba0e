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

	"github.com/castaneai/roomy/roomyserver"
)

const serviceName = "roomy_room"

type config struct {
	roomyserver.CommonConfig
	roomyserver.RoomConfig
}

func main() {
	var conf config
	envconfig.MustProcess("ROOMY", &conf)
	logger, err := roomyserver.NewLogger(conf.LogLevel, conf.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info(fmt.Sprintf("starting room server with config: %+v", conf))

	ctx, shutdown := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer shutdown()
	if err := run(ctx, conf, logger); err != nil {
		logger.Fatal("room server failed", zap.Error(err))
	}
}

func run(ctx context.Context, conf config, logger *zap.Logger) error {
	shutdownMetrics, err := roomyserver.SetupMeterProvider(ctx, conf.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()

	svc, err := roomyserver.NewRoomService(ctx, conf.RoomConfig, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()
	return roomyserver.Serve(ctx, fmt.Sprintf(":%s", conf.ListenPort), svc.Handler, logger)
}
