package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors returned by the service layer. Controllers and tests
// match on them with errors.Is.
var (
	ErrBookingConflict     = errors.New("booking_conflict")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
	ErrPropertyNotBookable = errors.New("property_not_bookable")
	ErrDuplicateReview     = errors.New("duplicate_review")
	ErrDuplicateSlug       = errors.New("duplicate_slug")
	ErrUsernameExists      = errors.New("username_exists")
	ErrEmailExists         = errors.New("email_exists")
	ErrUserAccountIDExists = errors.New("useraccount_id_exists")
	ErrNotOwner            = errors.New("not_owner")
	ErrNotFound            = errors.New("not_found")
	ErrUnknownCaller       = errors.New("unknown_caller")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")
	ErrNoRowsUpdated      = errors.New("no_rows_updated")
)

// AppError carries the HTTP status, public code and message for a failure
// raised below the controller layer.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: ErrCodeValidation, Message: msg, Err: err}
}

func NewConflictError(msg string, err error) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeConflict, Message: msg, Err: err}
}

func NewForbiddenError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Code: ErrCodeForbidden, Message: msg, Err: ErrNotOwner}
}

// NewUnauthorizedError is for a valid token whose user no longer exists.
func NewUnauthorizedError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: msg, Err: ErrUnknownCaller}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: msg, Err: ErrNotFound}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: ErrCodeInternal, Message: msg, Err: err}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}
	if errors.Is(err, ErrRowVersionConflict) {
		RespondErrorWithCode(w, http.StatusConflict, ErrCodeRowVersionConflict, "Another update occurred, please refresh", nil, err)
		return
	}
	// Fallback for unexpected error types
	RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
}
