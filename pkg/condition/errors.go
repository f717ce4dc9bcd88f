package condition

import (
	"errors"
	"fmt"
)

var (
	// ErrNilElement indicates an absent element was passed for evaluation.
	ErrNilElement = errors.New("element is nil")

	// ErrInvalidCondition indicates the zero Condition, or a combinator built
	// over one, was evaluated.
	ErrInvalidCondition = errors.New("invalid condition")
)

// InvalidArgumentError reports a caller error during evaluation.
type InvalidArgumentError struct {
	Argument string
	Cause    error
}

// Error returns the error message.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %v", e.Argument, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InvalidArgumentError) Unwrap() error {
	return e.Cause
}

// NilElementError returns the error reported when argument is a nil element.
func NilElementError(argument string) error {
	return &InvalidArgumentError{Argument: argument, Cause: ErrNilElement}
}
