package roomy

import (
	"context"
)

type Reservation struct {
	ID          int64  `json:"id"`
	Room        string `json:"room"`
	Activity    string `json:"activity"`
	Day         int    `json:"day"`
	Hour        int    `json:"hour"`
	Duration    int    `json:"duration"`
	BookedHours int    `json:"booked_hours"`
	HoldID      string `json:"hold_id"`
}

type ReservationStore interface {
	// Create assigns the next reservation ID to r and stores it.
	// IDs are strictly increasing and never reused.
	Create(ctx context.Context, r Reservation) (int64, error)

	// Get returns the reservation with the given ID.
	// If it does not exist, it returns Error with status: ErrorStatusNotFound.
	Get(ctx context.Context, id int64) (*Reservation, error)
}
