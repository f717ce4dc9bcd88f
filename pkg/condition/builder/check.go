package builder

import (
	"fmt"
	"sort"
	"strings"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/condition/cellang"
	"a11y-hq/lumen/pkg/condition/exprlang"
	"a11y-hq/lumen/pkg/element"
)

// Check is a test whose expression leaves report run-time failures instead
// of evaluating to false.
type Check func(e element.Element) (bool, error)

// Never is the check that is false for every element.
func Never(element.Element) (bool, error) { return false, nil }

// FromCondition adapts c to a Check.
func FromCondition(c condition.Condition) Check {
	return c.Matches
}

type program interface {
	Eval(e element.Element) (bool, error)
}

// BuildCheck converts node like Build. Errors raised by expr and cel leaves
// while evaluating are returned by the check.
func (b *Builder) BuildCheck(node any) (Check, error) {
	return b.check(node, "$")
}

func (b *Builder) program(lang, src string) (program, error) {
	if lang == "" {
		lang = b.Language
	}
	switch strings.ToLower(lang) {
	case "", LanguageExpr:
		return exprlang.CompileProgram(src)
	case LanguageCEL:
		return cellang.CompileProgram(src)
	default:
		return nil, fmt.Errorf("unknown expression language %q", lang)
	}
}

func (b *Builder) check(node any, path string) (Check, error) {
	switch v := node.(type) {
	case string:
		return b.expressionCheck("", v, path)
	case []any:
		return b.checkList(v, path, true)
	case map[string]any:
		if len(v) == 0 {
			return nil, &BuildError{Path: path, Message: "empty mapping"}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		checks := make([]Check, 0, len(keys))
		for _, k := range keys {
			c, err := b.checkKey(k, v[k], path+"."+k)
			if err != nil {
				return nil, err
			}
			checks = append(checks, c)
		}
		return all(checks), nil
	default:
		c, err := b.build(node, path)
		if err != nil {
			return nil, err
		}
		return FromCondition(c), nil
	}
}

func (b *Builder) checkList(items []any, path string, and bool) (Check, error) {
	checks := make([]Check, 0, len(items))
	for i, item := range items {
		c, err := b.check(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	if and {
		return all(checks), nil
	}
	return anyOf(checks), nil
}

func (b *Builder) checkKey(k string, v any, path string) (Check, error) {
	switch k {
	case "all", "any":
		items, ok := v.([]any)
		if !ok {
			return nil, &BuildError{Path: path, Message: "expected a list"}
		}
		return b.checkList(items, path, k == "all")

	case "not":
		inner, err := b.check(v, path)
		if err != nil {
			return nil, err
		}
		return func(e element.Element) (bool, error) {
			ok, err := inner(e)
			if err != nil {
				return false, err
			}
			return !ok, nil
		}, nil

	case "parent", "any_child", "any_ancestor":
		inner, err := b.check(v, path)
		if err != nil {
			return nil, err
		}
		switch k {
		case "parent":
			return func(e element.Element) (bool, error) {
				p := e.Parent()
				if element.IsNil(p) {
					return false, nil
				}
				return inner(p)
			}, nil
		case "any_child":
			return func(e element.Element) (bool, error) {
				for _, child := range e.Children() {
					if element.IsNil(child) {
						continue
					}
					if ok, err := inner(child); err != nil || ok {
						return ok, err
					}
				}
				return false, nil
			}, nil
		default:
			return func(e element.Element) (bool, error) {
				for p := e.Parent(); !element.IsNil(p); p = p.Parent() {
					if ok, err := inner(p); err != nil || ok {
						return ok, err
					}
				}
				return false, nil
			}, nil
		}

	case LanguageExpr, LanguageCEL:
		src, ok := v.(string)
		if !ok {
			return nil, &BuildError{Path: path, Message: "expected an expression string"}
		}
		return b.expressionCheck(k, src, path)

	default:
		c, err := b.key(k, v, path)
		if err != nil {
			return nil, err
		}
		return FromCondition(c), nil
	}
}

func (b *Builder) expressionCheck(lang, src, path string) (Check, error) {
	p, err := b.program(lang, src)
	if err != nil {
		return nil, &BuildError{Path: path, Message: "invalid expression", Cause: err}
	}
	return p.Eval, nil
}

func all(checks []Check) Check {
	return func(e element.Element) (bool, error) {
		for _, c := range checks {
			ok, err := c(e)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func anyOf(checks []Check) Check {
	return func(e element.Element) (bool, error) {
		for _, c := range checks {
			ok, err := c(e)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
}
