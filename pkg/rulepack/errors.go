package rulepack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPacks is returned when a directory holds no pack files.
var ErrNoPacks = errors.New("no rule pack files found")

// LoadError represents a file system failure while reading a pack, such as
// a missing file, a permission problem, an oversized file or invalid UTF-8.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule pack %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule pack %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents malformed YAML in a pack file.
type ParseError struct {
	FilePath string
	Line     int
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %q at line %d: %s", e.FilePath, e.Line, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error in %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error in %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// PackError represents a well-formed file whose content does not describe a
// valid rule: a missing ID, an unknown failure code, a condition that does
// not build, or an ID declared twice.
type PackError struct {
	Source  string
	RuleID  string
	Line    int
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PackError) Error() string {
	parts := []string{"invalid rule pack"}

	if e.Source != "" {
		loc := fmt.Sprintf("%q", e.Source)
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Line)
		}
		parts = append(parts, loc)
	}
	if e.RuleID != "" {
		parts = append(parts, fmt.Sprintf("rule %q", e.RuleID))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %s", e.Field))
	}
	parts = append(parts, e.Message)

	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *PackError) Unwrap() error {
	return e.Cause
}

// ErrorList collects errors from loading several files, some of which may
// have succeeded.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is
// one, or the ErrorList itself.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
