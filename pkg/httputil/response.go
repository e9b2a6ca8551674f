package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coursehq/courseapi/pkg/apperrors"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 response with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteBadRequest writes a 400 error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes a 401 error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, message)
}

// WriteAPIError maps a service error onto its HTTP status. Only the
// caller-safe message crosses the boundary; internal causes stay in logs.
func WriteAPIError(w http.ResponseWriter, err error) {
	status := statusForKind(apperrors.KindOf(err))

	body := ErrorResponse{Error: apperrors.MessageOf(err)}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && len(appErr.Messages) > 0 {
		body.Messages = appErr.Messages
	}
	WriteJSON(w, status, body)
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidationFailed:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
