package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// DomainError standardizes application errors at the transport boundary.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(code, message string) error {
	return NewDomainError(code, message, http.StatusConflict, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError maps core failures to transport errors. Validation and
// state-conflict kinds surface with their reason; infrastructure failures
// collapse to a detail-free internal error.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return NewDomainError("VALIDATION_FAILED", validationErr.Reason, http.StatusBadRequest, nil)
	}
	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return NewDomainError("INVALID_TRANSITION", transitionErr.Error(), http.StatusConflict, nil)
	}

	switch {
	case errors.Is(err, domain.ErrDangerousInput):
		return NewDomainError("DANGEROUS_INPUT", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrEmptyResponse),
		errors.Is(err, domain.ErrResponseTooLong):
		return NewDomainError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrTicketClosed):
		return NewDomainError("TICKET_CLOSED", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrPriorityReversal):
		return NewDomainError("PRIORITY_REVERSAL", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrVersionConflict):
		return NewDomainError("STALE_WRITE", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrTicketNotFound):
		return NewDomainError("NOT_FOUND", err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrUserNotFound):
		return NewDomainError("NOT_FOUND", err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrForbidden):
		return NewDomainError("FORBIDDEN", err.Error(), http.StatusForbidden, nil)
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
