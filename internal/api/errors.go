package api

import (
	"encoding/json"
	"net/http"

	"forumapp/pkg/logger"
)

// Error codes shared across all handlers.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteInternal logs the underlying error server-side and returns a generic
// 500. The real error never reaches the client.
func WriteInternal(w http.ResponseWriter, err error) {
	log := logger.Get()
	log.Error().Err(err).Msg("internal error")
	WriteError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

// WriteNotFound is the uniform 404 for resources that are absent or belong to
// another tenant. Both cases must be indistinguishable.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}
