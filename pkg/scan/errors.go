package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRoot is returned when the tree root is nil.
	ErrNilRoot = errors.New("scan root element is nil")

	// ErrNoRules is returned when no rules are selected.
	ErrNoRules = errors.New("no rules to evaluate")
)

// TooManyElementsError is returned when a tree exceeds the element limit.
type TooManyElementsError struct {
	Limit int
}

// Error implements the error interface.
func (e *TooManyElementsError) Error() string {
	return fmt.Sprintf("tree has more than %d elements", e.Limit)
}

// UnknownRuleError is returned when Options.RuleIDs names a missing rule.
type UnknownRuleError struct {
	RuleID string
}

// Error implements the error interface.
func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown rule %q", e.RuleID)
}
