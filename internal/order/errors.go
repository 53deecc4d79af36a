package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrForbidden     = errors.New("not allowed to access this order")
)

// ValidationError reports bad client input. No mutation has happened when one
// is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TransitionError reports a status change the state machine does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("order is already %s and cannot change status", e.From)
	}
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// NotCancellableError reports a cancel attempt outside the permitted window,
// naming the current status.
type NotCancellableError struct {
	Status Status
}

func (e *NotCancellableError) Error() string {
	if e.Status == StatusCancelled {
		return "order is already cancelled"
	}
	return fmt.Sprintf("order cannot be cancelled: current status is %s", e.Status)
}
