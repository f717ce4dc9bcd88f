// Package cellang compiles CEL expressions into condition leaves.
//
// The element facts (see element.Facts) are declared as dynamic variables:
//
//	c, err := cellang.Compile(`ControlType == "Button" && !("Toggle" in Patterns)`)
package cellang

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/element"
)

// Prefix is the leaf text prefix of compiled expressions.
const Prefix = "cel"

// costLimit bounds the work of a single evaluation.
const costLimit = 100000

var factNames = []string{
	"RuntimeID",
	"ControlType",
	"ControlTypeID",
	"LocalizedControlType",
	"Name",
	"HasName",
	"Patterns",
	"Properties",
	"ChildCount",
	"ParentControlType",
	"IsEnabled",
	"IsOffscreen",
	"IsKeyboardFocusable",
}

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func environment() (*cel.Env, error) {
	envOnce.Do(func() {
		opts := make([]cel.EnvOption, 0, len(factNames))
		for _, name := range factNames {
			opts = append(opts, cel.Variable(name, cel.DynType))
		}
		env, envErr = cel.NewEnv(opts...)
		if envErr != nil {
			envErr = fmt.Errorf("failed to create CEL environment: %w", envErr)
		}
	})
	return env, envErr
}

// CompileError reports an expression that failed to compile.
type CompileError struct {
	Source string
	Cause  error
}

// Error returns the error message.
func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile CEL expression %q: %v", e.Source, e.Cause)
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
	return fmt.Sprintf("CEL expression %q failed: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Program is a checked CEL expression.
type Program struct {
	src  string
	prog cel.Program
}

// CompileProgram checks src and plans it for evaluation.
func CompileProgram(src string) (*Program, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &CompileError{Source: src, Cause: fmt.Errorf("empty expression")}
	}

	e, err := environment()
	if err != nil {
		return nil, err
	}

	ast, issues := e.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{Source: src, Cause: issues.Err()}
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, &CompileError{Source: src, Cause: fmt.Errorf("expression type is %s, want bool", t)}
	}

	prog, err := e.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, &CompileError{Source: src, Cause: err}
	}
	return &Program{src: src, prog: prog}, nil
}

// String renders the program as cel(<src>).
func (p *Program) String() string {
	return Prefix + "(" + p.src + ")"
}

// Eval runs the program against the facts of e. A dynamic result that is not
// a boolean is an error.
func (p *Program) Eval(e element.Element) (bool, error) {
	if element.IsNil(e) {
		return false, condition.NilElementError("element")
	}
	out, _, err := p.prog.Eval(element.Facts(e))
	if err != nil {
		return false, &RuntimeError{Source: p.src, Cause: err}
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, &RuntimeError{Source: p.src, Cause: fmt.Errorf("result is %s, want bool", out.Type().TypeName())}
	}
	return ok, nil
}

// Compile checks src and returns a leaf condition rendering as cel(<src>).
// Non-boolean results and run-time failures evaluate to false.
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
