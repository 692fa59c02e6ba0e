package roomyredis

import "fmt"

const (
	redisHashFieldRoom        = "room"
	redisHashFieldActivity    = "activity"
	redisHashFieldDay         = "day"
	redisHashFieldHour        = "hour"
	redisHashFieldDuration    = "duration"
	redisHashFieldBookedHours = "booked_hours"
	redisHashFieldHoldID      = "hold_id"
)

// room scripts touch the room set and a grid together; the {rooms} hash tag keeps them in one slot.
func redisKeyRooms(prefix string) string {
	return fmt.Sprintf("%s{rooms}:names", prefix)
}

func redisKeyRoomGrid(prefix, name string) string {
	return fmt.Sprintf("%s{rooms}:grid:%s", prefix, name)
}

func redisKeyActivities(prefix string) string {
	return fmt.Sprintf("%sactivities", prefix)
}

func redisKeyReservationSeq(prefix string) string {
	return fmt.Sprintf("%sreservation_seq", prefix)
}

func redisKeyReservation(prefix string, id int64) string {
	return fmt.Sprintf("%sreservation:%d", prefix, id)
}
