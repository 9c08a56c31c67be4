package domain

import (
	"errors"
	"fmt"
)

// Sentinel failures raised by the aggregate and factory. They propagate
// unchanged through the orchestration layer; only the transport boundary
// interprets them.
var (
	ErrTicketClosed     = errors.New("ticket is closed and can no longer change")
	ErrPriorityReversal = errors.New("priority cannot return to UNASSIGNED once assigned")
	ErrEmptyResponse    = errors.New("response text must not be empty")
	ErrResponseTooLong  = fmt.Errorf("response text exceeds %d characters", MaxResponseLength)
	ErrDangerousInput   = errors.New("input contains markup-like content")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrVersionConflict  = errors.New("ticket was modified concurrently")
	ErrForbidden        = errors.New("operation not permitted for this role")
)

// ValidationError reports malformed input: bad shape, bad length or an
// unrecognized enum value.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError constructs a ValidationError.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// InvalidTransitionError reports a status change that skips a step or moves
// backward.
type InvalidTransitionError struct {
	From TicketStatus
	To   TicketStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition ticket from %s to %s", e.From, e.To)
}

// PublishError wraps a broker failure surfaced by the publish side.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish event: %v", e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
