// Package builder turns declarative, YAML-decoded condition trees into
// condition.Condition values.
//
// A node is one of:
//
//   - a boolean: true is And(), false is Or()
//   - a string: an expression in the builder's default language
//   - a list: the AND of its items
//   - a map: the AND of its keys, taken in sorted order
//
// Recognised map keys:
//
//	all, any         list of nodes
//	not              node
//	is               name of a predefined condition ("Hyperlink", "IsEnabled")
//	control_type     name or list of names
//	pattern          name or list of names, all required
//	property         {name, equals | exists | min/max | matches}
//	parent           node
//	any_child        node
//	any_ancestor     node
//	expr             expr-lang expression
//	cel              CEL expression
//
// Example:
//
//	all:
//	  - control_type: Hyperlink
//	  - not: {pattern: Invoke}
//	  - property: {name: IsOffscreen, equals: false}
package builder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/condition/cellang"
	"a11y-hq/lumen/pkg/condition/exprlang"
	"a11y-hq/lumen/pkg/element"
)

// Expression languages.
const (
	LanguageExpr = "expr"
	LanguageCEL  = "cel"
)

// BuildError reports a malformed node.
type BuildError struct {
	Path    string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("condition %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("condition %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Builder converts decoded nodes into conditions.
type Builder struct {
	// Language is used for bare string nodes. Defaults to LanguageExpr.
	Language string
}

// Build converts node using the default builder.
func Build(node any) (condition.Condition, error) {
	return (&Builder{}).Build(node)
}

// Build converts node into a condition.
func (b *Builder) Build(node any) (condition.Condition, error) {
	return b.build(node, "$")
}

// Expression compiles src in lang, or in the builder's default language when
// lang is empty.
func (b *Builder) Expression(lang, src string) (condition.Condition, error) {
	if lang == "" {
		lang = b.Language
	}
	switch strings.ToLower(lang) {
	case "", LanguageExpr:
		return exprlang.Compile(src)
	case LanguageCEL:
		return cellang.Compile(src)
	default:
		return condition.Condition{}, fmt.Errorf("unknown expression language %q", lang)
	}
}

func (b *Builder) build(node any, path string) (condition.Condition, error) {
	switch v := node.(type) {
	case nil:
		return condition.Condition{}, &BuildError{Path: path, Message: "empty node"}
	case bool:
		if v {
			return condition.And(), nil
		}
		return condition.Or(), nil
	case string:
		c, err := b.Expression("", v)
		if err != nil {
			return condition.Condition{}, &BuildError{Path: path, Message: "invalid expression", Cause: err}
		}
		return c, nil
	case []any:
		return b.list(v, path, condition.And)
	case map[string]any:
		return b.object(v, path)
	default:
		return condition.Condition{}, &BuildError{Path: path, Message: fmt.Sprintf("unsupported node type %T", node)}
	}
}

func (b *Builder) list(items []any, path string, combine func(...condition.Condition) condition.Condition) (condition.Condition, error) {
	cs := make([]condition.Condition, 0, len(items))
	for i, item := range items {
		c, err := b.build(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return condition.Condition{}, err
		}
		cs = append(cs, c)
	}
	return combine(cs...), nil
}

func (b *Builder) object(m map[string]any, path string) (condition.Condition, error) {
	if len(m) == 0 {
		return condition.Condition{}, &BuildError{Path: path, Message: "empty mapping"}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cs := make([]condition.Condition, 0, len(keys))
	for _, k := range keys {
		c, err := b.key(k, m[k], path+"."+k)
		if err != nil {
			return condition.Condition{}, err
		}
		cs = append(cs, c)
	}
	return condition.And(cs...), nil
}

func (b *Builder) key(k string, v any, path string) (condition.Condition, error) {
	switch k {
	case "all", "any":
		items, ok := v.([]any)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path, Message: "expected a list"}
		}
		if k == "all" {
			return b.list(items, path, condition.And)
		}
		return b.list(items, path, condition.Or)

	case "not":
		c, err := b.build(v, path)
		if err != nil {
			return condition.Condition{}, err
		}
		return condition.Not(c), nil

	case "parent", "any_child", "any_ancestor":
		c, err := b.build(v, path)
		if err != nil {
			return condition.Condition{}, err
		}
		switch k {
		case "parent":
			return condition.Parent(c), nil
		case "any_child":
			return condition.AnyChild(c), nil
		default:
			return condition.AnyAncestor(c), nil
		}

	case "is":
		name, ok := v.(string)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path, Message: "expected a name"}
		}
		c, ok := Named(name)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path, Message: fmt.Sprintf("unknown condition %q", name)}
		}
		return c, nil

	case "control_type":
		names, err := stringList(v, path)
		if err != nil {
			return condition.Condition{}, err
		}
		types := make([]element.ControlType, 0, len(names))
		for _, n := range names {
			ct, err := element.ParseControlType(n)
			if err != nil {
				return condition.Condition{}, &BuildError{Path: path, Message: "invalid control type", Cause: err}
			}
			types = append(types, ct)
		}
		return condition.ControlTypeIs(types...), nil

	case "pattern":
		names, err := stringList(v, path)
		if err != nil {
			return condition.Condition{}, err
		}
		cs := make([]condition.Condition, 0, len(names))
		for _, n := range names {
			p, err := element.ParsePattern(n)
			if err != nil {
				return condition.Condition{}, &BuildError{Path: path, Message: "invalid pattern", Cause: err}
			}
			cs = append(cs, condition.SupportsPattern(p))
		}
		return condition.And(cs...), nil

	case "property":
		m, ok := v.(map[string]any)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path, Message: "expected a mapping"}
		}
		return property(m, path)

	case LanguageExpr, LanguageCEL:
		src, ok := v.(string)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path, Message: "expected an expression string"}
		}
		c, err := b.Expression(k, src)
		if err != nil {
			return condition.Condition{}, &BuildError{Path: path, Message: "invalid expression", Cause: err}
		}
		return c, nil

	default:
		return condition.Condition{}, &BuildError{Path: path, Message: fmt.Sprintf("unknown key %q", k)}
	}
}

func property(m map[string]any, path string) (condition.Condition, error) {
	name, _ := m["name"].(string)
	if name == "" {
		return condition.Condition{}, &BuildError{Path: path + ".name", Message: "property name is required"}
	}
	id := element.PropertyID(name)

	if want, ok := m["equals"]; ok {
		return condition.PropertyEquals(id, want), nil
	}

	if pattern, ok := m["matches"]; ok {
		s, ok := pattern.(string)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path + ".matches", Message: "expected a regular expression"}
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return condition.Condition{}, &BuildError{Path: path + ".matches", Message: "invalid regular expression", Cause: err}
		}
		return condition.StringPropertyMatches(id, re), nil
	}

	lo, hasMin := m["min"]
	hi, hasMax := m["max"]
	if hasMin || hasMax {
		loF, hiF := -1e308, 1e308
		if hasMin {
			f, ok := element.ToFloat(lo)
			if !ok {
				return condition.Condition{}, &BuildError{Path: path + ".min", Message: "expected a number"}
			}
			loF = f
		}
		if hasMax {
			f, ok := element.ToFloat(hi)
			if !ok {
				return condition.Condition{}, &BuildError{Path: path + ".max", Message: "expected a number"}
			}
			hiF = f
		}
		if loF > hiF {
			return condition.Condition{}, &BuildError{Path: path, Message: "min is greater than max"}
		}
		return condition.PropertyInRange(id, loF, hiF), nil
	}

	if exists, ok := m["exists"]; ok {
		b, ok := exists.(bool)
		if !ok {
			return condition.Condition{}, &BuildError{Path: path + ".exists", Message: "expected a boolean"}
		}
		if b {
			return condition.PropertyExists(id), nil
		}
		return condition.Not(condition.PropertyExists(id)), nil
	}

	return condition.PropertyExists(id), nil
}

func stringList(v any, path string) ([]string, error) {
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, &BuildError{Path: fmt.Sprintf("%s[%d]", path, i), Message: "expected a string"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &BuildError{Path: path, Message: "expected a string or a list of strings"}
	}
}
