package roomy

import (
	"context"
)

type Coordinator interface {
	// Reserve checks the activity, books the room and records a reservation.
	// An unknown activity returns Error with status: ErrorStatusActivityNotFound,
	// a slot conflict returns Error with status: ErrorStatusRoomUnavailable.
	Reserve(ctx context.Context, req ReserveRequest) (*ReserveResponse, error)

	// ListAvailability returns the free hours of a room, proxied from the room service.
	ListAvailability(ctx context.Context, req ListAvailabilityRequest) (*QueryAvailabilityResponse, error)

	// Display returns a recorded reservation.
	// If the reservation does not exist, Error is returned with status: ErrorStatusNotFound.
	Display(ctx context.Context, id int64) (*Reservation, error)
}

type ReserveRequest struct {
	Room     string `json:"room"`
	Activity string `json:"activity"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Duration int    `json:"duration"`
}

type ReserveResponse struct {
	Reservation Reservation `json:"reservation"`
}

type ListAvailabilityRequest struct {
	Room string `json:"room"`
	Day  int    `json:"day,omitempty"`
}
