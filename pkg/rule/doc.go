// Package rule defines the contract every accessibility rule fulfils.
//
// A rule pairs a Condition, which decides whether the rule applies to an
// element, with an evaluation function that renders a verdict
// (EvaluationCode) for an element. Each rule also carries an Info record:
// its static Declaration plus the canonical text of its condition.
//
// # Construction
//
// Rules are built once, at process start, through New:
//
//  1. the definition's condition factory is called
//  2. the declaration is looked up by rule ID
//  3. construction fails with *DeclarationMissingError if there is none
//  4. the condition's canonical text is stamped into Info
//  5. the rule is frozen
//
// A *Rule returned by New is always ready to evaluate; there is no partially
// constructed state. Rules are immutable afterwards and safe to evaluate from
// many goroutines at once.
//
// # Basic Usage
//
//	decls := rule.NewDeclarations()
//	decls.MustRegister(rule.Declaration{
//	    ID:          "ControlShouldSupportInvokePattern",
//	    Description: "A hyperlink must support the Invoke pattern",
//	    Standard:    rule.WCAG412NameRoleValue,
//	})
//
//	r, err := rule.New(rule.Definition{
//	    ID:        "ControlShouldSupportInvokePattern",
//	    Condition: func() condition.Condition { return condition.Hyperlink },
//	    Evaluate: func(e element.Element) (rule.EvaluationCode, error) {
//	        if e.SupportsPattern(element.PatternInvoke) {
//	            return rule.Pass, nil
//	        }
//	        return rule.Error, nil
//	    },
//	}, decls)
//
//	code, err := r.Evaluate(e)
package rule
