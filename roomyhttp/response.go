package roomyhttp

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/castaneai/roomy"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

var pageTemplate = template.Must(template.New("page").Parse(`<html>
  <body>
{{- range $i, $line := .}}{{if $i}}<br>{{end}}
    {{$line}}
{{- end}}
  </body>
</html>
`))

// envelope is the JSON form of every response.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const statusOK = "ok"

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeJSON)
}

// writeOK answers a successful request. lines are the human-readable message, data is only sent in JSON.
func writeOK(w http.ResponseWriter, r *http.Request, logger *zap.Logger, data any, lines ...string) {
	write(w, r, logger, http.StatusOK, statusOK, data, lines)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := roomy.StatusOf(err)
	code := httpStatus(status)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	write(w, r, logger, code, string(status), nil, []string{roomy.ErrorMessage(err)})
}

func write(w http.ResponseWriter, r *http.Request, logger *zap.Logger, code int, status string, data any, lines []string) {
	if wantsJSON(r) {
		env := envelope{Status: status, Message: strings.Join(lines, "\n")}
		if data != nil {
			raw, err := json.Marshal(data)
			if err != nil {
				logger.Error("failed to marshal response data", zap.Error(err))
				code, env.Status, env.Message = http.StatusInternalServerError, string(roomy.ErrorStatusUnknown), "failed to encode response"
			} else {
				env.Data = raw
			}
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(env); err != nil {
			logger.Warn("failed to write response", zap.Error(err))
		}
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(code)
	if err := pageTemplate.Execute(w, lines); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

func httpStatus(status roomy.ErrorStatus) int {
	switch status {
	case roomy.ErrorStatusInvalidInput:
		return http.StatusBadRequest
	case roomy.ErrorStatusSlotConflict, roomy.ErrorStatusRoomUnavailable:
		return http.StatusForbidden
	case roomy.ErrorStatusNotFound, roomy.ErrorStatusActivityNotFound:
		return http.StatusNotFound
	case roomy.ErrorStatusMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case roomy.ErrorStatusAlreadyExists:
		return http.StatusConflict
	case roomy.ErrorStatusUpstreamUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// statusFromHTTP classifies a response that carried no readable status.
func statusFromHTTP(code int) roomy.ErrorStatus {
	switch code {
	case http.StatusBadRequest:
		return roomy.ErrorStatusInvalidInput
	case http.StatusForbidden:
		return roomy.ErrorStatusSlotConflict
	case http.StatusNotFound:
		return roomy.ErrorStatusNotFound
	case http.StatusMethodNotAllowed:
		return roomy.ErrorStatusMethodNotAllowed
	case http.StatusConflict:
		return roomy.ErrorStatusAlreadyExists
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return roomy.ErrorStatusUpstreamUnavailable
	}
	return roomy.ErrorStatusUnknown
}
