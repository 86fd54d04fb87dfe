package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kvetinski/fintech-account/internal/domain"
	"github.com/kvetinski/fintech-account/internal/logging"
)

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrAccountNotFound      = &AppError{http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrInvalidPhoneFormat   = &AppError{http.StatusBadRequest, "INVALID_PHONE_FORMAT", "Invalid phone number format"}
	ErrDuplicatePhoneNumber = &AppError{http.StatusBadRequest, "DUPLICATE_PHONE_NUMBER", "Phone number already exists"}
	ErrValidationFailed     = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrAccessDenied         = &AppError{http.StatusForbidden, "ACCESS_DENIED", "Access denied: insufficient permissions"}
	ErrInternal             = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
)

type errorResponse struct {
	ErrorCode string    `json:"errorCode"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// respondAppError writes appErr; an empty message falls back to the default one.
func respondAppError(w http.ResponseWriter, r *http.Request, appErr *AppError, message string) {
	if message == "" {
		message = appErr.Message
	}

	respondJSON(w, r, appErr.Status, errorResponse{
		ErrorCode: appErr.Code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())

	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.Error("request failed", "error", err)
		respondAppError(w, r, ErrInternal, "")
		return
	}

	var appErr *AppError
	switch {
	case errors.Is(derr.Kind, domain.ErrAccountNotFound):
		appErr = ErrAccountNotFound
	case errors.Is(derr.Kind, domain.ErrInvalidPhoneFormat):
		appErr = ErrInvalidPhoneFormat
	case errors.Is(derr.Kind, domain.ErrDuplicatePhoneNumber):
		appErr = ErrDuplicatePhoneNumber
	case errors.Is(derr.Kind, domain.ErrValidation):
		appErr = ErrValidationFailed
	default:
		log.Error("unhandled domain error", "error", err)
		respondAppError(w, r, ErrInternal, "")
		return
	}

	log.Warn(derr.Message, "error_code", appErr.Code)
	respondAppError(w, r, appErr, derr.Message)
}
