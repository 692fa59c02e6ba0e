package roomy

import (
	"context"
)

type RoomStore interface {
	// AddRoom creates a room whose slots are all free.
	// If the room already exists, it returns Error with status: ErrorStatusAlreadyExists.
	AddRoom(ctx context.Context, name string) error

	// RemoveRoom deletes a room and all of its slot state.
	// If the room does not exist, it returns Error with status: ErrorStatusNotFound.
	RemoveRoom(ctx context.Context, name string) error

	// ReserveSlot books every slot of the requested range for req.HoldID, or nothing at all.
	// If any slot is held by another hold, it returns Error with status: ErrorStatusSlotConflict.
	ReserveSlot(ctx context.Context, req ReserveSlotRequest) (*ReserveSlotResponse, error)

	// ReleaseSlot frees every slot of the room that is held by req.HoldID.
	ReleaseSlot(ctx context.Context, req ReleaseSlotRequest) (*ReleaseSlotResponse, error)

	// QueryAvailability lists the free hours of a room. Day 0 means every day of the week.
	QueryAvailability(ctx context.Context, req QueryAvailabilityRequest) (*QueryAvailabilityResponse, error)

	ListRooms(ctx context.Context) ([]string, error)
}

type ReserveSlotRequest struct {
	Name     string `json:"name"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Duration int    `json:"duration"`
	// HoldID identifies the booking. An empty HoldID is replaced by a generated one.
	HoldID string `json:"hold_id,omitempty"`
}

// ReserveSlotResponse describes what was actually booked.
type ReserveSlotResponse struct {
	Name   string `json:"name"`
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Hours  int    `json:"hours"`
	HoldID string `json:"hold_id"`
}

type ReleaseSlotRequest struct {
	Name   string `json:"name"`
	HoldID string `json:"hold_id"`
}

type ReleaseSlotResponse struct {
	Released int `json:"released"`
}

type QueryAvailabilityRequest struct {
	Name string `json:"name"`
	Day  int    `json:"day,omitempty"`
}

type QueryAvailabilityResponse struct {
	Name string            `json:"name"`
	Days []DayAvailability `json:"days"`
}

type DayAvailability struct {
	Day       int   `json:"day"`
	FreeHours []int `json:"free_hours"`
}
