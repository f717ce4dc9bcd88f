package rule

import (
	"fmt"
	"strings"
)

// EvaluationCode is the verdict of evaluating a rule against an element.
// The zero value is not a valid verdict.
type EvaluationCode int

const (
	// Pass means the element satisfies the rule.
	Pass EvaluationCode = iota + 1
	// Error means the element violates the rule.
	Error
	// Open means the result needs human review.
	Open
	// NotApplicable means the rule does not apply to the element.
	NotApplicable
	// ExecutionError means the rule failed to produce a verdict.
	ExecutionError
)

var codeNames = map[EvaluationCode]string{
	Pass:           "Pass",
	Error:          "Error",
	Open:           "Open",
	NotApplicable:  "NotApplicable",
	ExecutionError: "ExecutionError",
}

// Codes returns every valid code in declaration order.
func Codes() []EvaluationCode {
	return []EvaluationCode{Pass, Error, Open, NotApplicable, ExecutionError}
}

// String returns the code name.
func (c EvaluationCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("EvaluationCode(%d)", int(c))
}

// Valid reports whether c is one of the defined codes.
func (c EvaluationCode) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// IsFailure reports whether c calls for attention (Error or Open).
func (c EvaluationCode) IsFailure() bool {
	return c == Error || c == Open
}

// ParseEvaluationCode resolves a code by name (case-insensitive).
func ParseEvaluationCode(s string) (EvaluationCode, error) {
	for code, name := range codeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown evaluation code %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c EvaluationCode) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid evaluation code %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *EvaluationCode) UnmarshalText(text []byte) error {
	code, err := ParseEvaluationCode(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}
