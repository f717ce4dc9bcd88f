package rule

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateDeclaration indicates a declaration ID was registered twice.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")

	// ErrInvalidDeclaration indicates a declaration without an ID.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrInvalidCode indicates an evaluation function returned an undefined code.
	ErrInvalidCode = errors.New("evaluation returned an undefined code")

	// ErrPanic indicates an evaluation function panicked.
	ErrPanic = errors.New("evaluation panicked")
)

// DeclarationMissingError indicates a rule was constructed without a
// registered declaration.
type DeclarationMissingError struct {
	RuleID string
}

// Error returns the error message.
func (e *DeclarationMissingError) Error() string {
	return fmt.Sprintf("rule %s: no declaration registered", e.RuleID)
}

// DefinitionError indicates a malformed rule definition.
type DefinitionError struct {
	RuleID  string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *DefinitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule %s: %s: %v", e.RuleID, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule %s: %s", e.RuleID, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// EvaluationFailure describes why a rule produced the ExecutionError verdict.
type EvaluationFailure struct {
	RuleID    string
	ElementID string
	Cause     error
}

// Error returns the error message.
func (e *EvaluationFailure) Error() string {
	return fmt.Sprintf("rule %s on element %s: execution failed: %v", e.RuleID, e.ElementID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EvaluationFailure) Unwrap() error {
	return e.Cause
}
