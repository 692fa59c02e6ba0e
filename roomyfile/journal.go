package roomyfile

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

type journaledRoomStore struct {
	roomy.RoomStore
	log    *NameLog
	logger *zap.Logger
	mu     sync.Mutex
}

// NewRoomStore journals room names to log. Slot state is not journaled.
func NewRoomStore(inner roomy.RoomStore, log *NameLog, logger *zap.Logger) roomy.RoomStore {
	return &journaledRoomStore{RoomStore: inner, log: log, logger: logger}
}

func (s *journaledRoomStore) AddRoom(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.RoomStore.AddRoom(ctx, name); err != nil {
		return err
	}
	if err := s.log.Append(name); err != nil {
		// the room exists in memory; it will be missing after a restart
		s.logger.Error("failed to journal added room", zap.String("room", name), zap.Error(err))
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("room %s added but not journaled: %w", name, err))
	}
	return nil
}

func (s *journaledRoomStore) RemoveRoom(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.RoomStore.RemoveRoom(ctx, name); err != nil {
		return err
	}
	names, err := s.RoomStore.ListRooms(ctx)
	if err == nil {
		err = s.log.Rewrite(names)
	}
	if err != nil {
		s.logger.Error("failed to journal removed room", zap.String("room", name), zap.Error(err))
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("room %s removed but not journaled: %w", name, err))
	}
	return nil
}

type journaledActivityRegistry struct {
	roomy.ActivityRegistry
	log    *NameLog
	logger *zap.Logger
	mu     sync.Mutex
}

func NewActivityRegistry(inner roomy.ActivityRegistry, log *NameLog, logger *zap.Logger) roomy.ActivityRegistry {
	return &journaledActivityRegistry{ActivityRegistry: inner, log: log, logger: logger}
}

func (r *journaledActivityRegistry) AddActivity(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ActivityRegistry.AddActivity(ctx, name); err != nil {
		return err
	}
	if err := r.log.Append(name); err != nil {
		r.logger.Error("failed to journal added activity", zap.String("activity", name), zap.Error(err))
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("activity %s added but not journaled: %w", name, err))
	}
	return nil
}

func (r *journaledActivityRegistry) RemoveActivity(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ActivityRegistry.RemoveActivity(ctx, name); err != nil {
		return err
	}
	names, err := r.ActivityRegistry.ListActivities(ctx)
	if err == nil {
		err = r.log.Rewrite(names)
	}
	if err != nil {
		r.logger.Error("failed to journal removed activity", zap.String("activity", name), zap.Error(err))
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("activity %s removed but not journaled: %w", name, err))
	}
	return nil
}

// RestoreRooms replays log into store. Rooms that already exist are skipped.
func RestoreRooms(ctx context.Context, store roomy.RoomStore, log *NameLog) (int, error) {
	return restore(ctx, log, store.AddRoom)
}

// RestoreActivities replays log into reg. Activities that already exist are skipped.
func RestoreActivities(ctx context.Context, reg roomy.ActivityRegistry, log *NameLog) (int, error) {
	return restore(ctx, log, reg.AddActivity)
}

func restore(ctx context.Context, log *NameLog, add func(ctx context.Context, name string) error) (int, error) {
	names, err := log.Load()
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, name := range names {
		if err := add(ctx, name); err != nil {
			if roomy.ErrorHasStatus(err, roomy.ErrorStatusAlreadyExists) {
				continue
			}
			return restored, fmt.Errorf("failed to restore '%s' from '%s': %w", name, log.Path(), err)
		}
		restored++
	}
	return restored, nil
}
