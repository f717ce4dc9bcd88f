// Package condition provides the Condition algebra used to decide which
// elements of an accessibility tree a rule applies to.
//
// A Condition is an immutable value: either a leaf predicate over a single
// element or one of the combinators And, Or and Not. Conditions compose
// freely and can be shared between goroutines.
//
// # Basic Usage
//
//	c := condition.And(
//	    condition.Button,
//	    condition.Not(condition.IsOffscreen),
//	)
//
//	ok, err := c.Matches(e)
//	fmt.Println(c) // (ControlType(Button) AND NOT(IsOffscreen == true))
//
// # Identities
//
// And() with no operands matches every element and renders as "TRUE".
// Or() with no operands matches nothing and renders as "FALSE". A combinator
// with a single operand is that operand. Not(Not(c)) matches exactly what c
// matches.
//
// # Canonical Form
//
// String is derived only from the operands and the combinator, so two
// conditions built the same way render identically. Fingerprint hashes that
// form and Equal compares it.
package condition
