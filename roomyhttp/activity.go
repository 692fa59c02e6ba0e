package roomyhttp

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

type activityHandler struct {
	registry roomy.ActivityRegistry
	logger   *zap.Logger
}

// NewActivityHandler serves the activity service's text protocol on top of registry.
func NewActivityHandler(registry roomy.ActivityRegistry, logger *zap.Logger) http.Handler {
	h := &activityHandler{registry: registry, logger: logger}
	router := newRouter(logger)
	router.GET("/add", h.add)
	router.GET("/remove", h.remove)
	router.GET("/check", h.check)
	router.GET("/list", h.list)
	return wrap(logger, router)
}

func (h *activityHandler) add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := requiredString(r.URL.Query(), "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.registry.AddActivity(r.Context(), name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, nil, fmt.Sprintf("Activity %s added.", name))
}

func (h *activityHandler) remove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := requiredString(r.URL.Query(), "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.registry.RemoveActivity(r.Context(), name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, nil, fmt.Sprintf("Activity %s removed.", name))
}

// check answers 404 with status activity_not_found for an unknown activity.
// Clients rely on that status to tell a missing activity from a missing endpoint.
func (h *activityHandler) check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := requiredString(r.URL.Query(), "name")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	exists, err := h.registry.Exists(r.Context(), name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !exists {
		writeError(w, r, h.logger, roomy.Errorf(roomy.ErrorStatusActivityNotFound, "Activity %s does not exist.", name))
		return
	}
	writeOK(w, r, h.logger, activityCheck{Name: name, Exists: true}, fmt.Sprintf("Activity %s exists.", name))
}

func (h *activityHandler) list(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	names, err := h.registry.ListActivities(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, h.logger, activityList{Activities: names}, fmt.Sprintf("Activities: %s", strings.Join(names, ", ")))
}

type activityCheck struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

type activityList struct {
	Activities []string `json:"activities"`
}
