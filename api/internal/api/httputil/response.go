// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UnauthorizedResponse is the single body every authentication rejection
// shares, whatever the underlying reason.
var UnauthorizedResponse = ErrorResponse{
	Error:   "unauthorized",
	Message: "Authentication is required",
}

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// HandleError maps domain errors to HTTP status codes and writes a JSON response.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		statusCode = http.StatusBadRequest
		errorResponse = ErrorResponse{
			Error:   "validation_error",
			Message: describeValidation(validationErrs),
		}

	case errors.Is(err, domain.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}

	case errors.Is(err, domain.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		}

	case errors.Is(err, domain.ErrInvalidFormat):
		statusCode = http.StatusBadRequest
		errorResponse = ErrorResponse{
			Error:   "invalid_format",
			Message: "API key format is invalid",
		}

	case errors.Is(err, domain.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		}

	case errors.Is(err, domain.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "invalid_credentials",
			Message: err.Error(),
		}

	case domain.IsUnauthorized(err):
		// 🛡️ Never reveal which check failed
		statusCode = http.StatusUnauthorized
		errorResponse = UnauthorizedResponse

	case errors.Is(err, domain.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this resource",
		}

	default:
		// For unknown/internal errors, don't expose details to the client
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(context.Background(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	WriteJSON(w, statusCode, errorResponse)
}

// HandleBadRequest writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequest(w http.ResponseWriter, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

func describeValidation(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "validation failed"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email address"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "username":
		return fe.Field() + " must be 3-20 letters, digits, underscores or CJK characters"
	default:
		return fe.Field() + " is invalid"
	}
}
