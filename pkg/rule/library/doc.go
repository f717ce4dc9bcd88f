// Package library contains the built-in accessibility rules.
//
// Every rule is one Condition plus one evaluation body. Declarations live in
// an explicit table; Register adds them to a rule.Declarations and Rules
// builds the ready rules through rule.New.
//
//	decls := rule.NewDeclarations()
//	library.Register(decls)
//	rules, err := library.Rules(decls)
package library
