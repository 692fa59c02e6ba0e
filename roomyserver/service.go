package roomyserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomyconnect"
	"github.com/castaneai/roomy/roomycoord"
	"github.com/castaneai/roomy/roomyfile"
	"github.com/castaneai/roomy/roomyhttp"
	"github.com/castaneai/roomy/roomyotel"
)

// Service is one ready-to-serve service: the text protocol at the root and Connect RPC next to it.
type Service struct {
	Name    string
	Handler http.Handler
	closers []func()
}

func (s *Service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func NewRoomService(ctx context.Context, conf RoomConfig, fs afero.Fs, logger *zap.Logger) (*Service, error) {
	backend, err := OpenBackend(conf.StoreConfig, logger)
	if err != nil {
		return nil, err
	}
	store, err := roomyotel.NewRoomStore(backend.RoomStore(conf.SlotPolicy))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create room store metrics: %w", err)
	}
	if conf.NameLog != "" {
		nameLog := roomyfile.NewNameLog(fs, conf.NameLog)
		n, err := roomyfile.RestoreRooms(ctx, store, nameLog)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("failed to restore rooms: %w", err)
		}
		logger.Info("rooms restored", zap.Int("count", n), zap.String("path", nameLog.Path()))
		store = roomyfile.NewRoomStore(store, nameLog, logger)
	}

	mux := http.NewServeMux()
	mux.Handle(roomyconnect.NewRoomServiceHandler(store))
	mux.Handle("/", roomyhttp.NewRoomHandler(store, logger))
	return &Service{Name: "room", Handler: mux, closers: []func(){backend.Close}}, nil
}

func NewActivityService(ctx context.Context, conf ActivityConfig, fs afero.Fs, logger *zap.Logger) (*Service, error) {
	backend, err := OpenBackend(conf.StoreConfig, logger)
	if err != nil {
		return nil, err
	}
	registry := backend.ActivityRegistry()
	if conf.NameLog != "" {
		nameLog := roomyfile.NewNameLog(fs, conf.NameLog)
		n, err := roomyfile.RestoreActivities(ctx, registry, nameLog)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("failed to restore activities: %w", err)
		}
		logger.Info("activities restored", zap.Int("count", n), zap.String("path", nameLog.Path()))
		registry = roomyfile.NewActivityRegistry(registry, nameLog, logger)
	}

	mux := http.NewServeMux()
	mux.Handle(roomyconnect.NewActivityServiceHandler(registry))
	mux.Handle("/", roomyhttp.NewActivityHandler(registry, logger))
	return &Service{Name: "activity", Handler: mux, closers: []func(){backend.Close}}, nil
}

func NewReservationService(conf ReservationConfig, logger *zap.Logger) (*Service, error) {
	activities, rooms, err := newUpstreams(conf, logger)
	if err != nil {
		return nil, err
	}
	backend, err := OpenBackend(conf.StoreConfig, logger)
	if err != nil {
		return nil, err
	}
	coordinator, err := roomyotel.NewCoordinator(roomycoord.New(activities, rooms, backend.ReservationStore(),
		roomycoord.WithCallTimeout(conf.CallTimeout),
		roomycoord.WithMaxRetries(conf.MaxRetries),
		roomycoord.WithLogger(logger),
	))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create coordinator metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(roomyconnect.NewReservationServiceHandler(coordinator))
	mux.Handle("/", roomyhttp.NewReservationHandler(coordinator, logger))
	return &Service{Name: "reservation", Handler: mux, closers: []func(){backend.Close}}, nil
}

func newUpstreams(conf ReservationConfig, logger *zap.Logger) (roomy.ActivityRegistry, roomy.RoomStore, error) {
	switch conf.UpstreamProtocol {
	case UpstreamProtocolText:
		opts := []roomyhttp.ClientOption{roomyhttp.WithTimeout(conf.CallTimeout), roomyhttp.WithClientLogger(logger)}
		return roomyhttp.NewActivityClient(conf.ActivityServiceURL, opts...), roomyhttp.NewRoomClient(conf.RoomServiceURL, opts...), nil
	case UpstreamProtocolConnect:
		httpClient := &http.Client{Timeout: conf.CallTimeout}
		return roomyconnect.NewActivityClient(httpClient, conf.ActivityServiceURL), roomyconnect.NewRoomClient(httpClient, conf.RoomServiceURL), nil
	}
	return nil, nil, fmt.Errorf("unknown upstream protocol: %q", conf.UpstreamProtocol)
}
