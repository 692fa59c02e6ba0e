package roomyhttp

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

type reservationHandler struct {
	coordinator roomy.Coordinator
	logger      *zap.Logger
}

// NewReservationHandler serves the reservation service's text protocol on top of coordinator.
func NewReservationHandler(coordinator roomy.Coordinator, logger *zap.Logger) http.Handler {
	h := &reservationHandler{coordinator: coordinator, logger: logger}
	router := newRouter(logger)
	router.GET("/reserve", h.reserve)
	router.GET("/listavailability", h.listAvailability)
	router.GET("/display", h.display)
	return wrap(logger, router)
}

func (h *reservationHandler) reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := parseReserveRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.coordinator.Reserve(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, resp.Reservation, fmt.Sprintf("Room reserved. Reservation ID: %d", resp.Reservation.ID))
}

func parseReserveRequest(r *http.Request) (roomy.ReserveRequest, error) {
	q := r.URL.Query()
	var req roomy.ReserveRequest
	var err error
	if req.Room, err = requiredString(q, "room"); err != nil {
		return req, err
	}
	if req.Activity, err = requiredString(q, "activity"); err != nil {
		return req, err
	}
	if req.Day, err = requiredInt(q, "day"); err != nil {
		return req, err
	}
	if req.Hour, err = requiredInt(q, "hour"); err != nil {
		return req, err
	}
	if req.Duration, err = requiredInt(q, "duration"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *reservationHandler) listAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	room, err := requiredString(q, "room")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	day, err := optionalInt(q, "day")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.coordinator.ListAvailability(r.Context(), roomy.ListAvailabilityRequest{Room: room, Day: day})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, resp, availabilityLines(resp)...)
}

func (h *reservationHandler) display(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw, err := requiredString(r.URL.Query(), "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, h.logger, roomy.Errorf(roomy.ErrorStatusInvalidInput, "parameter id is not a number: %q", raw))
		return
	}
	res, err := h.coordinator.Display(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, res,
		"Reservation details:",
		fmt.Sprintf("Room name: %s", res.Room),
		fmt.Sprintf("Activity name: %s", res.Activity),
		fmt.Sprintf("Day: %d", res.Day),
		fmt.Sprintf("Hour: %d", res.Hour),
		fmt.Sprintf("Duration: %d", res.Duration))
}
