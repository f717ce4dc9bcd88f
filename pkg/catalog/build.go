package catalog

import (
	"fmt"
	"sort"

	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/rule/library"
	"a11y-hq/lumen/pkg/rulepack"
)

// BuildOptions controls which rules go into a Set.
type BuildOptions struct {
	// Builtin includes the built-in rule library.
	Builtin bool

	// Disabled lists rule IDs to leave out.
	Disabled []string
}

// BuildResult is the outcome of Build.
type BuildResult struct {
	Set *Set

	// UnknownDisabled lists disabled IDs that matched no rule.
	UnknownDisabled []string
}

// Build runs every rule through the rule construction pipeline: the
// declarations of the library and the packs go into one table, then each
// definition is constructed against it. Any failure aborts the build so
// that a bad pack never yields a partial rule set.
func Build(opts BuildOptions, compiled *rulepack.Compiled) (*BuildResult, error) {
	decls := rule.NewDeclarations()

	var (
		defs    []rule.Definition
		origins = make(map[string]Entry)
	)

	if opts.Builtin {
		if err := library.Register(decls); err != nil {
			return nil, fmt.Errorf("failed to register built-in declarations: %w", err)
		}
		for _, def := range library.Definitions() {
			defs = append(defs, def)
			origins[def.ID] = Entry{Origin: SourceBuiltin}
		}
	}

	if compiled != nil {
		for _, d := range compiled.Declarations {
			if err := decls.Register(d); err != nil {
				return nil, &rulepack.PackError{
					Source:  compiled.Sources[d.ID],
					RuleID:  d.ID,
					Field:   "id",
					Message: "conflicts with an existing rule",
					Cause:   err,
				}
			}
		}
		for _, def := range compiled.Definitions {
			defs = append(defs, def)
			origins[def.ID] = Entry{Origin: SourcePack, File: compiled.Sources[def.ID]}
		}
	}

	disabled := make(map[string]bool, len(opts.Disabled))
	for _, id := range opts.Disabled {
		disabled[id] = true
	}

	entries := make([]Entry, 0, len(defs))
	for _, def := range defs {
		r, err := rule.New(def, decls)
		if err != nil {
			return nil, err
		}
		if disabled[r.ID()] {
			delete(disabled, r.ID())
			continue
		}
		e := origins[def.ID]
		e.Rule = r
		entries = append(entries, e)
	}

	unknown := make([]string, 0, len(disabled))
	for id := range disabled {
		unknown = append(unknown, id)
	}
	sort.Strings(unknown)

	return &BuildResult{Set: NewSet(entries), UnknownDisabled: unknown}, nil
}
