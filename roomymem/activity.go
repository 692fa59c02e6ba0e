package roomymem

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/castaneai/roomy"
)

type activityRegistry struct {
	names map[string]struct{}
	mu    sync.RWMutex
}

func NewActivityRegistry() roomy.ActivityRegistry {
	return &activityRegistry{names: make(map[string]struct{})}
}

func (r *activityRegistry) AddActivity(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity name"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return roomy.Errorf(roomy.ErrorStatusAlreadyExists, "activity %s already exists", name)
	}
	r.names[name] = struct{}{}
	return nil
}

func (r *activityRegistry) RemoveActivity(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity name"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; !ok {
		return roomy.Errorf(roomy.ErrorStatusNotFound, "activity %s does not exist", name)
	}
	delete(r.names, name)
	return nil
}

func (r *activityRegistry) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity name"))
	}
	r.mu.RLock()
	_, ok := r.names[name]
	r.mu.RUnlock()
	return ok, nil
}

func (r *activityRegistry) ListActivities(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
