package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     nil,
	}
}

// Transition failure codes. Handlers map these straight into the response
// envelope so callers can tell apart why an operation was declined.
const (
	CodeInvalidActor       = "INVALID_ACTOR"
	CodeInvalidSourceState = "INVALID_SOURCE_STATE"
	CodeTimeGate           = "TIME_GATE_NOT_SATISFIED"
	CodePayoutFrozen       = "PAYOUT_FROZEN"
	CodeProcessorFailure   = "PROCESSOR_FAILURE"
)

// InvalidActor rejects a transition attempted by a party the action does not
// belong to.
func InvalidActor(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidActor,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// InvalidSourceState rejects a transition attempted from a state that does not
// permit it.
func InvalidSourceState(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidSourceState,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// TimeGateNotSatisfied rejects a gated transition attempted outside its window:
// cancellation cutoff passed, rental not yet ended, payout hold still running.
func TimeGateNotSatisfied(message string) *AppError {
	return &AppError{
		Code:    CodeTimeGate,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

// PayoutFrozen reports a settlement blocked by an open dispute.
func PayoutFrozen(message string) *AppError {
	return &AppError{
		Code:    CodePayoutFrozen,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// ProcessorFailure wraps a payment gateway error. The local record is left
// unchanged, so the identical operation can be retried.
func ProcessorFailure(message string, err error) *AppError {
	return &AppError{
		Code:    CodeProcessorFailure,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
