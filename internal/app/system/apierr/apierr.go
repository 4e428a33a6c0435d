// internal/app/system/apierr/apierr.go
// Package apierr maps the service error taxonomy onto HTTP responses.
//
// Kinds:
//
//	InvalidInput    400  malformed or missing required fields
//	InvalidState    400  illegal lifecycle transition
//	Unauthenticated 401  missing/invalid token or bad credentials
//	Forbidden       403  authenticated but not the session owner
//	NotFound        404  unknown session id
//	Conflict        409  duplicate unique key
//	Internal        500  unexpected fault; detail stays in the logs
//
// Every handler validates before mutating, so a response from here
// always means no partial state change happened.
package apierr

import (
	"net/http"

	"github.com/inkwell-live/inkwell/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type response struct {
	Error string `json:"error"`
}

// Logger writes taxonomy responses and records the noisy ones.
type Logger struct {
	log *zap.Logger
}

// NewLogger wraps a zap logger for API error reporting.
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

// InvalidInput responds 400 for malformed or missing fields.
func (l *Logger) InvalidInput(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusBadRequest, response{Error: msg})
}

// InvalidState responds 400 for an illegal lifecycle transition.
func (l *Logger) InvalidState(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusBadRequest, response{Error: msg})
}

// Unauthenticated responds 401.
func (l *Logger) Unauthenticated(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusUnauthorized, response{Error: msg})
}

// Forbidden responds 403.
func (l *Logger) Forbidden(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusForbidden, response{Error: msg})
}

// NotFound responds 404.
func (l *Logger) NotFound(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusNotFound, response{Error: msg})
}

// Conflict responds 409 for duplicate unique keys.
func (l *Logger) Conflict(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusConflict, response{Error: msg})
}

// TooManyRequests responds 429 when a rate limit trips.
func (l *Logger) TooManyRequests(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusTooManyRequests, response{Error: msg})
}

// Internal logs the underlying fault and responds 500 with a generic
// body. The cause never reaches the client.
func (l *Logger) Internal(w http.ResponseWriter, op string, err error) {
	l.log.Error("internal error", zap.String("op", op), zap.Error(err))
	httpjson.Write(w, http.StatusInternalServerError, response{Error: "internal server error"})
}
