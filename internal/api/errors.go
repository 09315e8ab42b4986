package api

import (
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/schema"
)

// Codes that are not list service error kinds.
const (
	CodeRateLimited   = "RATE_LIMITED"
	CodeInternalError = "INTERNAL_ERROR"
)

// Messages that are not list service messages.
const (
	MsgRateLimited   = "Rate limit exceeded"
	MsgInternalError = "Internal server error"
	MsgRouteNotFound = "Route not found"
	MsgMethodBlocked = "Method not allowed"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	StatusCode int       `json:"statusCode"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Path       string    `json:"path"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"requestId,omitempty"`
}

// statusForKind maps each error kind to its HTTP status.
var statusForKind = map[schema.ErrorKind]int{
	schema.KindContentNotFound:       http.StatusNotFound,
	schema.KindAlreadyExists:         http.StatusConflict,
	schema.KindNotFound:              http.StatusNotFound,
	schema.KindInvalidInput:          http.StatusBadRequest,
	schema.KindDependencyUnavailable: http.StatusServiceUnavailable,
}

// respondError translates err into the error envelope.
// Untyped errors become INTERNAL_ERROR without leaking their text.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var typed *schema.Error
	if !errors.As(err, &typed) {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled API error")
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, MsgInternalError)
		return
	}

	status, ok := statusForKind[typed.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", string(typed.Kind)).Str("path", r.URL.Path).Msg("API error")
	}
	msg := typed.Message
	if msg == "" {
		msg = string(typed.Kind)
	}
	writeError(w, r, status, string(typed.Kind), msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, status, ErrorBody{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Path:       r.URL.Path,
		Timestamp:  time.Now().UTC(),
		RequestID:  chimiddleware.GetReqID(r.Context()),
	})
}
