package roomymem

import (
	"context"
	"sync"

	"github.com/castaneai/roomy"
)

type reservationStore struct {
	lastID       int64
	reservations map[int64]roomy.Reservation
	mu           sync.Mutex
}

func NewReservationStore() roomy.ReservationStore {
	return &reservationStore{reservations: make(map[int64]roomy.Reservation)}
}

func (s *reservationStore) Create(ctx context.Context, r roomy.Reservation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	r.ID = s.lastID
	s.reservations[r.ID] = r
	return r.ID, nil
}

func (s *reservationStore) Get(ctx context.Context, id int64) (*roomy.Reservation, error) {
	s.mu.Lock()
	r, ok := s.reservations[id]
	s.mu.Unlock()
	if !ok {
		return nil, roomy.Errorf(roomy.ErrorStatusNotFound, "reservation %d does not exist", id)
	}
	return &r, nil
}
