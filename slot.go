package roomy

import (
	"fmt"
)

const (
	DaysPerWeek = 7
	FirstHour   = 9
	LastHour    = 17
	HoursPerDay = LastHour - FirstHour + 1
)

// SlotPolicy maps a requested duration to the number of hourly slots that get booked.
type SlotPolicy string

const (
	// SlotPolicyExact books exactly duration slots: duration=1 is a one-hour booking.
	SlotPolicyExact SlotPolicy = "exact"
	// SlotPolicyInclusive books duration+1 slots, including the hour the booking ends at.
	SlotPolicyInclusive SlotPolicy = "inclusive"
)

func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch SlotPolicy(s) {
	case "", SlotPolicyExact:
		return SlotPolicyExact, nil
	case SlotPolicyInclusive:
		return SlotPolicyInclusive, nil
	}
	return "", fmt.Errorf("unknown slot policy: %q", s)
}

// Decode implements envconfig.Decoder.
func (p *SlotPolicy) Decode(value string) error {
	parsed, err := ParseSlotPolicy(value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p SlotPolicy) Span(duration int) int {
	if p == SlotPolicyInclusive {
		return duration + 1
	}
	return duration
}

// SlotRange is a validated run of consecutive hourly slots on one day.
type SlotRange struct {
	Day  int
	Hour int
	Span int
}

func NewSlotRange(day, hour, duration int, policy SlotPolicy) (SlotRange, error) {
	if err := ValidateDay(day); err != nil {
		return SlotRange{}, err
	}
	if hour < FirstHour || hour > LastHour {
		return SlotRange{}, Errorf(ErrorStatusInvalidInput, "hour must be between %d and %d: %d", FirstHour, LastHour, hour)
	}
	if duration < 1 {
		return SlotRange{}, Errorf(ErrorStatusInvalidInput, "duration must be positive: %d", duration)
	}
	r := SlotRange{Day: day, Hour: hour, Span: policy.Span(duration)}
	if last := r.LastHour(); last > LastHour {
		return SlotRange{}, Errorf(ErrorStatusInvalidInput, "booking from %d:00 for %d slots ends after %d:00", hour, r.Span, LastHour)
	}
	return r, nil
}

func ValidateDay(day int) error {
	if day < 1 || day > DaysPerWeek {
		return Errorf(ErrorStatusInvalidInput, "day must be between 1 and %d: %d", DaysPerWeek, day)
	}
	return nil
}

func (r SlotRange) LastHour() int {
	return r.Hour + r.Span - 1
}

// DayIndex and HourIndex are the zero-based grid coordinates of the first slot.
func (r SlotRange) DayIndex() int  { return r.Day - 1 }
func (r SlotRange) HourIndex() int { return r.Hour - FirstHour }

func (r SlotRange) Hours() []int {
	hours := make([]int, 0, r.Span)
	for h := r.Hour; h <= r.LastHour(); h++ {
		hours = append(hours, h)
	}
	return hours
}
