package rule

import (
	"fmt"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/element"
)

// EvaluateFunc renders a verdict for a non-nil element. Returning a non-nil
// error, panicking, or returning an undefined code all yield ExecutionError.
type EvaluateFunc func(e element.Element) (EvaluationCode, error)

// Definition is the behavioural part of a rule.
type Definition struct {
	// ID keys the declaration lookup.
	ID string

	// Condition builds the applicability condition. It is called exactly once,
	// during construction.
	Condition func() condition.Condition

	// Evaluate renders the verdict.
	Evaluate EvaluateFunc
}

// Info is the immutable metadata record of a constructed rule.
type Info struct {
	Declaration

	// Condition is the canonical text of the rule's condition.
	Condition string `json:"condition" yaml:"condition"`

	// ConditionFingerprint is a stable digest of Condition.
	ConditionFingerprint string `json:"condition_fingerprint" yaml:"condition_fingerprint"`
}

// Rule is a ready-to-evaluate rule. It is immutable and safe for concurrent
// use.
type Rule struct {
	info      Info
	condition condition.Condition
	evaluate  EvaluateFunc
}

// New builds a rule from def, taking its declaration from decls.
func New(def Definition, decls *Declarations) (*Rule, error) {
	if def.ID == "" {
		return nil, &DefinitionError{Message: "empty rule id"}
	}
	if def.Condition == nil {
		return nil, &DefinitionError{RuleID: def.ID, Message: "missing condition factory"}
	}
	if def.Evaluate == nil {
		return nil, &DefinitionError{RuleID: def.ID, Message: "missing evaluate function"}
	}

	cond := def.Condition()
	if !cond.Valid() {
		return nil, &DefinitionError{RuleID: def.ID, Message: "condition factory returned an invalid condition", Cause: condition.ErrInvalidCondition}
	}

	var (
		decl Declaration
		ok   bool
	)
	if decls != nil {
		decl, ok = decls.Lookup(def.ID)
	}
	if !ok {
		return nil, &DeclarationMissingError{RuleID: def.ID}
	}

	return &Rule{
		info: Info{
			Declaration:          decl,
			Condition:            cond.String(),
			ConditionFingerprint: cond.Fingerprint(),
		},
		condition: cond,
		evaluate:  def.Evaluate,
	}, nil
}

// MustNew is New that panics on error.
func MustNew(def Definition, decls *Declarations) *Rule {
	r, err := New(def, decls)
	if err != nil {
		panic(err)
	}
	return r
}

// ID returns the rule identifier.
func (r *Rule) ID() string { return r.info.ID }

// Info returns the rule's metadata record.
func (r *Rule) Info() Info { return r.info }

// Condition returns the rule's applicability condition.
func (r *Rule) Condition() condition.Condition { return r.condition }

// Evaluate renders a verdict for e.
//
// A nil element is a caller error and yields no verdict. Any failure inside
// the rule yields ExecutionError together with an *EvaluationFailure.
func (r *Rule) Evaluate(e element.Element) (code EvaluationCode, err error) {
	if element.IsNil(e) {
		return 0, condition.NilElementError("element")
	}

	defer func() {
		if p := recover(); p != nil {
			code, err = ExecutionError, r.executionError(e, fmt.Errorf("%w: %v", ErrPanic, p))
		}
	}()

	code, err = r.evaluate(e)
	if err != nil {
		return ExecutionError, r.executionError(e, err)
	}
	if !code.Valid() {
		return ExecutionError, r.executionError(e, fmt.Errorf("%w: %d", ErrInvalidCode, int(code)))
	}
	return code, nil
}

// PassesTest reports whether Evaluate returns Pass for e.
func (r *Rule) PassesTest(e element.Element) (bool, error) {
	code, err := r.Evaluate(e)
	if err != nil {
		return false, err
	}
	return code == Pass, nil
}

// Applies reports whether the rule's condition matches e.
func (r *Rule) Applies(e element.Element) (bool, error) {
	return r.condition.Matches(e)
}

func (r *Rule) executionError(e element.Element, cause error) error {
	return &EvaluationFailure{RuleID: r.info.ID, ElementID: e.RuntimeID(), Cause: cause}
}

// Gated wraps fn so that it returns NotApplicable for elements c does not
// match. Concrete rules use it to stay correct when called without a
// pre-filter.
func Gated(c condition.Condition, fn EvaluateFunc) EvaluateFunc {
	return func(e element.Element) (EvaluationCode, error) {
		ok, err := c.Matches(e)
		if err != nil {
			return 0, err
		}
		if !ok {
			return NotApplicable, nil
		}
		return fn(e)
	}
}
