package roomyconnect

const (
	RoomServiceName        = "roomy.v1.RoomService"
	ActivityServiceName    = "roomy.v1.ActivityService"
	ReservationServiceName = "roomy.v1.ReservationService"
)

const (
	RoomServiceAddRoomProcedure           = "/roomy.v1.RoomService/AddRoom"
	RoomServiceRemoveRoomProcedure        = "/roomy.v1.RoomService/RemoveRoom"
	RoomServiceReserveSlotProcedure       = "/roomy.v1.RoomService/ReserveSlot"
	RoomServiceReleaseSlotProcedure       = "/roomy.v1.RoomService/ReleaseSlot"
	RoomServiceQueryAvailabilityProcedure = "/roomy.v1.RoomService/QueryAvailability"
	RoomServiceListRoomsProcedure         = "/roomy.v1.RoomService/ListRooms"

	ActivityServiceAddActivityProcedure    = "/roomy.v1.ActivityService/AddActivity"
	ActivityServiceRemoveActivityProcedure = "/roomy.v1.ActivityService/RemoveActivity"
	ActivityServiceExistsProcedure         = "/roomy.v1.ActivityService/Exists"
	ActivityServiceListActivitiesProcedure = "/roomy.v1.ActivityService/ListActivities"

	ReservationServiceReserveProcedure          = "/roomy.v1.ReservationService/Reserve"
	ReservationServiceListAvailabilityProcedure = "/roomy.v1.ReservationService/ListAvailability"
	ReservationServiceDisplayProcedure          = "/roomy.v1.ReservationService/Display"
)

type Empty struct{}

type NameRequest struct {
	Name string `json:"name"`
}

type NameList struct {
	Names []string `json:"names"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type DisplayRequest struct {
	ID int64 `json:"id"`
}
