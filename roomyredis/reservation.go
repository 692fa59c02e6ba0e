package roomyredis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/castaneai/roomy"
)

type redisReservationStore struct {
	keyPrefix string
	client    rueidis.Client
}

// NewReservationStore allocates IDs with INCR, so coordinators sharing one Redis never issue the same ID.
func NewReservationStore(keyPrefix string, client rueidis.Client) roomy.ReservationStore {
	return &redisReservationStore{keyPrefix: keyPrefix, client: client}
}

func (s *redisReservationStore) Create(ctx context.Context, r roomy.Reservation) (int64, error) {
	incr := s.client.B().Incr().Key(redisKeyReservationSeq(s.keyPrefix)).Build()
	id, err := s.client.Do(ctx, incr).AsInt64()
	if err != nil {
		return 0, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to INCR reservation sequence: %w", err))
	}
	r.ID = id

	// an ID whose HSET fails stays consumed; IDs are never handed out twice
	fv := s.client.B().Hset().Key(redisKeyReservation(s.keyPrefix, id)).FieldValue()
	for _, kv := range encodeReservation(r) {
		fv = fv.FieldValue(kv[0], kv[1])
	}
	if err := s.client.Do(ctx, fv.Build()).Error(); err != nil {
		return 0, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to HSET reservation %d: %w", id, err))
	}
	return id, nil
}

func (s *redisReservationStore) Get(ctx context.Context, id int64) (*roomy.Reservation, error) {
	cmd := s.client.B().Hgetall().Key(redisKeyReservation(s.keyPrefix, id)).Build()
	fields, err := s.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, fmt.Errorf("failed to HGETALL reservation %d: %w", id, err))
	}
	if len(fields) == 0 {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "reservation %d does not exist", id)
	}
	r, err := decodeReservation(id, fields)
	if err != nil {
		return nil, roomy.NewError(roomy.ErrorStatusUnknown, err)
	}
	return r, nil
}
