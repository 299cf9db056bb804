package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/logging"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondAppError maps an error from the service layer onto a status code and
// a stable error code. Upstream and unknown errors are logged with detail and
// answered generically.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.GetLoggerFromContext(r.Context())

	var (
		validationErr *apperr.ValidationError
		conflictErr   *apperr.ConflictError
		authErr       *apperr.AuthError
		notFoundErr   *apperr.NotFoundError
		upstreamErr   *apperr.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("validation failed", "field", validationErr.Field, "error", validationErr.Message)
		RespondJSON(w, ErrorResponse{
			Error: validationErr.Message,
			Code:  CodeValidationFailed,
			Field: validationErr.Field,
		}, http.StatusBadRequest)
	case errors.As(err, &conflictErr):
		logger.Warn("conflict", "field", conflictErr.Field)
		code := conflictErr.Code
		if code == "" {
			code = CodeConflict
		}
		RespondJSON(w, ErrorResponse{
			Error: conflictErr.Message,
			Code:  code,
			Field: conflictErr.Field,
		}, http.StatusConflict)
	case errors.As(err, &authErr):
		logger.Warn("auth failed", "code", authErr.Code)
		status := http.StatusUnauthorized
		if authErr.Forbidden {
			status = http.StatusForbidden
		}
		RespondErrorWithCode(w, authErr.Message, authErr.Code, status)
	case errors.As(err, &notFoundErr):
		RespondErrorWithCode(w, err.Error(), CodeNotFound, http.StatusNotFound)
	case errors.As(err, &upstreamErr):
		logger.Error("upstream failure", "service", upstreamErr.Service, "status", upstreamErr.Status, "error", upstreamErr.Err)
		RespondErrorWithCode(w, "temporarily unavailable, please try again later", CodeUpstreamUnavailable, http.StatusBadGateway)
	default:
		logger.Error("internal error", "error", err)
		RespondErrorWithCode(w, "internal server error", CodeInternalError, http.StatusInternalServerError)
	}
}
