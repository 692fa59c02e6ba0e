package roomyhttp

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

// newRouter returns a router that answers unknown paths with 404 and other methods with 405.
func newRouter(logger *zap.Logger) *httprouter.Router {
	router := httprouter.New()
	router.HandleMethodNotAllowed = true
	router.HandleOPTIONS = false
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, logger, roomy.Errorf(roomy.ErrorStatusNotFound, "unknown path: %s", r.URL.Path))
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, logger, roomy.Errorf(roomy.ErrorStatusMethodNotAllowed, "method %s is not allowed", r.Method))
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		logger.Error("panic in handler", zap.String("path", r.URL.Path), zap.Any("panic", v))
		writeError(w, r, logger, roomy.Errorf(roomy.ErrorStatusUnknown, "internal error"))
	}
	return router
}

// wrap closes the connection after every response and logs the request.
func wrap(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		m := httpsnoop.CaptureMetrics(next, w, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status_code", m.Code),
			zap.Duration("duration", m.Duration))
	})
}
