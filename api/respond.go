package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/logging"
)

// ErrorResponse 是错误响应体。
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	json.NewEncoder(w).Encode(data)
}

// statusOf 把领域错误码映射成 HTTP 状态码。
func statusOf(err error) (int, string) {
	switch {
	case core.IsInvalidInput(err):
		return http.StatusBadRequest, core.ErrorCodeInvalidInput
	case core.IsNotFound(err):
		return http.StatusNotFound, core.ErrorCodeNotFound
	case core.IsUnavailable(err):
		return http.StatusServiceUnavailable, core.ErrorCodeUnavailable
	}
	return http.StatusInternalServerError, core.ErrorCodeInternalError
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if de := core.GetDomainError(err); de != nil {
		msg = de.Message
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context(), log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   msg,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}
