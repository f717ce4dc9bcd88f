package rulepack

import (
	"fmt"
	"strings"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/condition/builder"
	"a11y-hq/lumen/pkg/element"
	"a11y-hq/lumen/pkg/rule"
)

// Compiled holds the declarations and definitions produced from packs.
// Declarations[i] and Definitions[i] describe the same rule.
type Compiled struct {
	Declarations []rule.Declaration
	Definitions  []rule.Definition

	// Sources maps each rule ID to the pack file that declared it.
	Sources map[string]string
}

// Len returns the number of compiled rules.
func (c *Compiled) Len() int {
	return len(c.Definitions)
}

// Compile turns packs into rule declarations and definitions. Every rule is
// checked; the rules that compiled are returned together with an ErrorList
// for the ones that did not. A rule ID declared twice is an error for the
// second occurrence.
func Compile(packs []*Pack) (*Compiled, error) {
	out := &Compiled{Sources: make(map[string]string)}
	errList := &ErrorList{}

	for _, pack := range packs {
		b := &builder.Builder{Language: pack.Language}
		for _, spec := range pack.Rules {
			if prev, dup := out.Sources[spec.ID]; dup && spec.ID != "" {
				errList.Add(&PackError{
					Source:  pack.Source,
					RuleID:  spec.ID,
					Line:    spec.Line,
					Field:   "id",
					Message: fmt.Sprintf("already declared in %q", prev),
					Cause:   rule.ErrDuplicateDeclaration,
				})
				continue
			}

			decl, def, err := compileRule(b, pack.Source, spec)
			if err != nil {
				errList.Add(err)
				continue
			}
			out.Declarations = append(out.Declarations, decl)
			out.Definitions = append(out.Definitions, def)
			out.Sources[spec.ID] = pack.Source
		}
	}

	return out, errList.ToError()
}

func compileRule(b *builder.Builder, source string, spec RuleSpec) (rule.Declaration, rule.Definition, error) {
	fail := func(field, msg string, cause error) error {
		return &PackError{Source: source, RuleID: spec.ID, Line: spec.Line, Field: field, Message: msg, Cause: cause}
	}

	if strings.TrimSpace(spec.ID) == "" {
		return rule.Declaration{}, rule.Definition{}, fail("id", "is required", nil)
	}
	if spec.Condition == nil {
		return rule.Declaration{}, rule.Definition{}, fail("condition", "is required", nil)
	}

	failure := rule.Error
	if spec.Failure != "" {
		code, err := rule.ParseEvaluationCode(spec.Failure)
		if err != nil || !code.IsFailure() {
			return rule.Declaration{}, rule.Definition{}, fail("failure", fmt.Sprintf("must be error or open, got %q", spec.Failure), nil)
		}
		failure = code
	}

	if spec.Language != "" {
		b = &builder.Builder{Language: spec.Language}
	}

	cond, err := b.Build(spec.Condition)
	if err != nil {
		return rule.Declaration{}, rule.Definition{}, fail("condition", "does not build", err)
	}

	// A rule without pass_when flags every element it applies to.
	passWhen := builder.Check(builder.Never)
	if spec.PassWhen != nil {
		passWhen, err = b.BuildCheck(spec.PassWhen)
		if err != nil {
			return rule.Declaration{}, rule.Definition{}, fail("pass_when", "does not build", err)
		}
	}

	decl := rule.Declaration{
		ID:          spec.ID,
		Description: spec.Description,
		HowToFix:    spec.HowToFix,
		Standard:    rule.Standard(spec.Standard),
		PropertyID:  spec.Property,
		FailureCode: failure,
	}

	def := rule.Definition{
		ID:        spec.ID,
		Condition: func() condition.Condition { return cond },
		Evaluate:  rule.Gated(cond, verdict(passWhen, failure)),
	}

	return decl, def, nil
}

// verdict maps passWhen to Pass or failure. Errors from passWhen are
// returned unchanged.
func verdict(passWhen builder.Check, failure rule.EvaluationCode) rule.EvaluateFunc {
	return func(e element.Element) (rule.EvaluationCode, error) {
		ok, err := passWhen(e)
		if err != nil {
			return 0, err
		}
		if ok {
			return rule.Pass, nil
		}
		return failure, nil
	}
}
