package roomyredis

import (
	"fmt"
	"strconv"

	"github.com/castaneai/roomy"
)

// A grid is stored as a hash whose fields are "day:hour" and whose values are hold ids.
// Free slots have no field.

func encodeSlotField(day, hour int) string {
	return fmt.Sprintf("%d:%d", day, hour)
}

func decodeSlotField(field string) (int, int, error) {
	var day, hour int
	if _, err := fmt.Sscanf(field, "%d:%d", &day, &hour); err != nil {
		return 0, 0, fmt.Errorf("failed to parse slot field '%s': %w", field, err)
	}
	if day < 1 || day > roomy.DaysPerWeek || hour < roomy.FirstHour || hour > roomy.LastHour {
		return 0, 0, fmt.Errorf("slot field out of range: '%s'", field)
	}
	return day, hour, nil
}

func encodeSlotFields(r roomy.SlotRange) []string {
	fields := make([]string, 0, r.Span)
	for _, hour := range r.Hours() {
		fields = append(fields, encodeSlotField(r.Day, hour))
	}
	return fields
}

func encodeReservation(r roomy.Reservation) [][2]string {
	return [][2]string{
		{redisHashFieldRoom, r.Room},
		{redisHashFieldActivity, r.Activity},
		{redisHashFieldDay, strconv.Itoa(r.Day)},
		{redisHashFieldHour, strconv.Itoa(r.Hour)},
		{redisHashFieldDuration, strconv.Itoa(r.Duration)},
		{redisHashFieldBookedHours, strconv.Itoa(r.BookedHours)},
		{redisHashFieldHoldID, r.HoldID},
	}
}

func decodeReservation(id int64, fields map[string]string) (*roomy.Reservation, error) {
	r := &roomy.Reservation{
		ID:       id,
		Room:     fields[redisHashFieldRoom],
		Activity: fields[redisHashFieldActivity],
		HoldID:   fields[redisHashFieldHoldID],
	}
	if r.Room == "" || r.Activity == "" {
		return nil, fmt.Errorf("failed to decode reservation %d: missing room or activity", id)
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{redisHashFieldDay, &r.Day},
		{redisHashFieldHour, &r.Hour},
		{redisHashFieldDuration, &r.Duration},
		{redisHashFieldBookedHours, &r.BookedHours},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(fields[i.field])
		if err != nil {
			return nil, fmt.Errorf("failed to decode reservation %d field '%s': %w", id, i.field, err)
		}
		*i.dst = v
	}
	return r, nil
}
