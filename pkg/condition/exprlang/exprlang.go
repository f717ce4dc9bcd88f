// Package exprlang compiles expr-lang expressions into condition leaves.
//
// Expressions are evaluated against element.Facts, so the following names are
// in scope: RuntimeID, ControlType, ControlTypeID, LocalizedControlType, Name,
// HasName, Patterns, Properties, ChildCount, ParentControlType, IsEnabled,
// IsOffscreen and IsKeyboardFocusable.
//
//	c, err := exprlang.Compile(`ControlType == "Hyperlink" && "Invoke" in Patterns`)
package exprlang

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/element"
)

// Prefix is the leaf text prefix of compiled expressions.
const Prefix = "expr"

var env = map[string]any{
	"RuntimeID":            "",
	"ControlType":          "",
	"ControlTypeID":        0,
	"LocalizedControlType": "",
	"Name":                 "",
	"HasName":              false,
	"Patterns":             []string{},
	"Properties":           map[string]any{},
	"ChildCount":           0,
	"ParentControlType":    "",
	"IsEnabled":            false,
	"IsOffscreen":          false,
	"IsKeyboardFocusable":  false,
}

// CompileError reports an expression that failed to compile.
type CompileError struct {
	Source string
	Cause  error
}

// Error returns the error message.
func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile expression %q: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// RuntimeError reports an expression that failed while evaluating.
type RuntimeError struct {
	Source string
	Cause  error
}

// Error returns the error message.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("expression %q failed: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Program is a compiled boolean expression.
type Program struct {
	src  string
	prog *vm.Program
}

// CompileProgram type-checks src as a boolean expression.
func CompileProgram(src string) (*Program, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &CompileError{Source: src, Cause: fmt.Errorf("empty expression")}
	}

	prog, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, &CompileError{Source: src, Cause: err}
	}
	return &Program{src: src, prog: prog}, nil
}

// String renders the program as expr(<src>).
func (p *Program) String() string {
	return Prefix + "(" + p.src + ")"
}

// Eval runs the program against the facts of e.
func (p *Program) Eval(e element.Element) (bool, error) {
	if element.IsNil(e) {
		return false, condition.NilElementError("element")
	}
	out, err := expr.Run(p.prog, element.Facts(e))
	if err != nil {
		return false, &RuntimeError{Source: p.src, Cause: err}
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, &RuntimeError{Source: p.src, Cause: fmt.Errorf("result is %T, want bool", out)}
	}
	return ok, nil
}

// Compile type-checks src as a boolean expression and returns a leaf
// condition rendering as expr(<src>). A run-time failure evaluates to false.
func Compile(src string) (condition.Condition, error) {
	p, err := CompileProgram(src)
	if err != nil {
		return condition.Condition{}, err
	}
	return condition.Leaf(p.String(), func(e element.Element) bool {
		ok, _ := p.Eval(e)
		return ok
	}), nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) condition.Condition {
	c, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return c
}
