// Package httpapi holds what every v1 handler shares: the error body,
// JSON writing and the gateway identity.
package httpapi

import (
	"encoding/json"
	"errors"
	"file-service/internal/core/domain"
	"log/slog"
	"net/http"
)

// Error codes returned in the error body
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeFileNotReady     = "FILE_NOT_READY"
	CodeShareUnavailable = "SHARE_UNAVAILABLE"
	CodeInvalidPassword  = "INVALID_PASSWORD"
	CodeFileInfected     = "FILE_INFECTED"
	CodeTransformFailed  = "TRANSFORM_FAILED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeScanUnavailable  = "SCAN_UNAVAILABLE"
	CodeStorage          = "STORAGE_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes the error body with status
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code, Message: message})
}

// BadRequest writes a 400 validation error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidation, message)
}

// WriteDomainError maps a service error to its status and code.
// Server side failures are logged and answered with a generic message.
func WriteDomainError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, err.Error())
	case errors.Is(err, domain.ErrValidation):
		BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		WriteError(w, http.StatusForbidden, CodeForbidden, "access denied")
	case errors.Is(err, domain.ErrInvalidSharePassword):
		WriteError(w, http.StatusUnauthorized, CodeInvalidPassword, "invalid share password")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, notFoundMessage(err))
	case errors.Is(err, domain.ErrFileNotReady):
		WriteError(w, http.StatusConflict, CodeFileNotReady, "file is not ready")
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, domain.ErrShareUnavailable):
		WriteError(w, http.StatusGone, CodeShareUnavailable, "share is no longer available")
	case errors.Is(err, domain.ErrScanInfected):
		WriteError(w, http.StatusUnprocessableEntity, CodeFileInfected, err.Error())
	case errors.Is(err, domain.ErrTransform):
		WriteError(w, http.StatusUnprocessableEntity, CodeTransformFailed, err.Error())
	case errors.Is(err, domain.ErrScanUnavailable):
		logger.Error(msg, slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, CodeScanUnavailable, "malware scan unavailable, retry later")
	case errors.Is(err, domain.ErrStorage):
		logger.Error(msg, slog.Any("error", err))
		WriteError(w, http.StatusBadGateway, CodeStorage, "storage unavailable")
	default:
		logger.Error(msg, slog.Any("error", err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// notFoundMessage names the missing entity without echoing wrapped details such as storage keys
func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrShareNotFound):
		return "share not found"
	case errors.Is(err, domain.ErrVersionNotFound):
		return "version not found"
	case errors.Is(err, domain.ErrTagNotFound):
		return "tag not found"
	default:
		return "file not found"
	}
}

// WriteJSON encodes v with status
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("error encoding response", slog.Any("error", err))
	}
}
