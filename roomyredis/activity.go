package roomyredis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/rueidis"

	"github.com/castaneai/roomy"
)

type redisActivityRegistry struct {
	keyPrefix string
	client    rueidis.Client
}

func NewActivityRegistry(keyPrefix string, client rueidis.Client) roomy.ActivityRegistry {
	return &redisActivityRegistry{keyPrefix: keyPrefix, client: client}
}

func (r *redisActivityRegistry) AddActivity(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity name"))
	}
	cmd := r.client.B().Sadd().Key(redisKeyActivities(r.keyPrefix)).Member(name).Build()
	added, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to SADD activity: %w", err))
	}
	if added == 0 {
		return roomy.Errorf(roomy.ErrorStatusAlreadyExists, "activity %s already exists", name)
	}
	return nil
}

func (r *redisActivityRegistry) RemoveActivity(ctx context.Context, name string) error {
	if name == "" {
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity name"))
	}
	cmd := r.client.B().Srem().Key(redisKeyActivities(r.keyPrefix)).Member(name).Build()
	removed, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to SREM activity: %w", err))
	}
	if removed == 0 {
		return roomy.Errorf(roomy.ErrorStatusNotFound, "activity %s does not exist", name)
	}
	return nil
}

func (r *redisActivityRegistry) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New("missing activity name"))
	}
	cmd := r.client.B().Sismember().Key(redisKeyActivities(r.keyPrefix)).Member(name).Build()
	member, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to SISMEMBER activity: %w", err))
	}
	return member == 1, nil
}

func (r *redisActivityRegistry) ListActivities(ctx context.Context) ([]string, error) {
	cmd := r.client.B().Smembers().Key(redisKeyActivities(r.keyPrefix)).Build()
	names, err := r.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to SMEMBERS activities: %w", err))
	}
	sort.Strings(names)
	return names, nil
}
