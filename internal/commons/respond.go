package commons

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
)

// ErrorBody is the error envelope every endpoint emits.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the bare acknowledgement some endpoints emit.
type MessageBody struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write json response", err, logger.Fields{"status": status})
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteDomainError maps a service error to its HTTP status and error body.
// Unrecognized errors become an opaque 500; internals never reach the client.
func WriteDomainError(w http.ResponseWriter, err error) {
	status, message := statusForError(err)
	WriteError(w, status, message)
}

func statusForError(err error) (int, string) {
	var validation domain.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error()
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, domain.ErrTokenMalformed), errors.Is(err, domain.ErrUnknownAccount):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest, "Insufficient balance"
	case errors.Is(err, domain.ErrReceiverNotFound):
		return http.StatusNotFound, "Receiver not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "Unauthorized"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
