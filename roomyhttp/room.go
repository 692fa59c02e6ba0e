package roomyhttp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

type roomHandler struct {
	store  roomy.RoomStore
	logger *zap.Logger
}

// NewRoomHandler serves the room service's text protocol on top of store.
func NewRoomHandler(store roomy.RoomStore, logger *zap.Logger) http.Handler {
	h := &roomHandler{store: store, logger: logger}
	router := newRouter(logger)
	router.GET("/add", h.add)
	router.GET("/remove", h.remove)
	router.GET("/reserve", h.reserve)
	router.GET("/release", h.release)
	router.GET("/checkavailability", h.checkAvailability)
	router.GET("/list", h.list)
	return wrap(logger, router)
}

func (h *roomHandler) add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := requiredString(r.URL.Query(), "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.store.AddRoom(r.Context(), name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, nil, fmt.Sprintf("Room %s added.", name))
}

func (h *roomHandler) remove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := requiredString(r.URL.Query(), "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.store.RemoveRoom(r.Context(), name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, nil, fmt.Sprintf("Room %s removed.", name))
}

func (h *roomHandler) reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := parseReserveSlotRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.store.ReserveSlot(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, resp, fmt.Sprintf("Room %s reserved for day %d at %d:00 for %d hours.", resp.Name, resp.Day, resp.Hour, resp.Hours))
}

func parseReserveSlotRequest(r *http.Request) (roomy.ReserveSlotRequest, error) {
	q := r.URL.Query()
	var req roomy.ReserveSlotRequest
	var err error
	if req.Name, err = requiredString(q, "name"); err != nil {
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
	req.HoldID = q.Get("hold")
	return req, nil
}

func (h *roomHandler) release(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	name, err := requiredString(q, "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	hold, err := requiredString(q, "hold")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.store.ReleaseSlot(r.Context(), roomy.ReleaseSlotRequest{Name: name, HoldID: hold})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, resp, fmt.Sprintf("Released %d slots of room %s.", resp.Released, name))
}

func (h *roomHandler) checkAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	name, err := requiredString(q, "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	day, err := optionalInt(q, "day")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.store.QueryAvailability(r.Context(), roomy.QueryAvailabilityRequest{Name: name, Day: day})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, resp, availabilityLines(resp)...)
}

func (h *roomHandler) list(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	names, err := h.store.ListRooms(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, roomList{Rooms: names}, fmt.Sprintf("Rooms: %s", strings.Join(names, ", ")))
}

type roomList struct {
	Rooms []string `json:"rooms"`
}

func availabilityLines(resp *roomy.QueryAvailabilityResponse) []string {
	lines := make([]string, 0, len(resp.Days))
	for _, day := range resp.Days {
		hours := make([]string, 0, len(day.FreeHours))
		for _, h := range day.FreeHours {
			hours = append(hours, strconv.Itoa(h))
		}
		lines = append(lines, fmt.Sprintf("Available hours for room %s on day %d: %s", resp.Name, day.Day, strings.Join(hours, ", ")))
	}
	return lines
}
