package condition

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"a11y-hq/lumen/pkg/element"
)

// ControlTypeIs matches elements whose control type is one of types.
// With no types it matches nothing.
func ControlTypeIs(types ...element.ControlType) Condition {
	set := make(map[element.ControlType]bool, len(types))
	uniq := make([]element.ControlType, 0, len(types))
	for _, ct := range types {
		if !set[ct] {
			set[ct] = true
			uniq = append(uniq, ct)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].String() < uniq[j].String() })

	names := make([]string, len(uniq))
	for i, ct := range uniq {
		names[i] = ct.String()
	}

	return Leaf("ControlType("+strings.Join(names, ", ")+")", func(e element.Element) bool {
		return set[e.ControlType()]
	})
}

// SupportsPattern matches elements that support pattern p.
func SupportsPattern(p element.Pattern) Condition {
	return Leaf("Pattern("+p.String()+")", func(e element.Element) bool {
		return e.SupportsPattern(p)
	})
}

// PropertyExists matches elements on which property id is present.
func PropertyExists(id element.PropertyID) Condition {
	return Leaf("HasProperty("+string(id)+")", func(e element.Element) bool {
		_, ok := e.Property(id)
		return ok
	})
}

// PropertyEquals matches elements whose property id equals want. Numeric
// values compare by magnitude regardless of their Go type.
func PropertyEquals(id element.PropertyID, want any) Condition {
	return Leaf(fmt.Sprintf("%s == %s", id, literal(want)), func(e element.Element) bool {
		got, ok := e.Property(id)
		return ok && valuesEqual(got, want)
	})
}

// PropertyInRange matches elements whose numeric property id lies in the
// closed interval [lo, hi].
func PropertyInRange(id element.PropertyID, lo, hi float64) Condition {
	return Leaf(fmt.Sprintf("%s in [%g, %g]", id, lo, hi), func(e element.Element) bool {
		v, ok := element.NumberProperty(e, id)
		return ok && v >= lo && v <= hi
	})
}

// StringPropertyMatches matches elements whose string property id matches re.
// A nil re yields an invalid condition.
func StringPropertyMatches(id element.PropertyID, re *regexp.Regexp) Condition {
	if re == nil {
		return Condition{}
	}
	return Leaf(fmt.Sprintf("%s =~ /%s/", id, re.String()), func(e element.Element) bool {
		s, ok := element.StringProperty(e, id)
		return ok && re.MatchString(s)
	})
}

// Parent matches elements whose parent exists and matches c.
func Parent(c Condition) Condition {
	return relation("Parent", c, func(e element.Element) bool {
		p := e.Parent()
		return !element.IsNil(p) && c.eval(p)
	})
}

// AnyChild matches elements with at least one child matching c.
func AnyChild(c Condition) Condition {
	return relation("AnyChild", c, func(e element.Element) bool {
		for _, child := range e.Children() {
			if !element.IsNil(child) && c.eval(child) {
				return true
			}
		}
		return false
	})
}

// AnyAncestor matches elements with at least one ancestor matching c.
func AnyAncestor(c Condition) Condition {
	return relation("AnyAncestor", c, func(e element.Element) bool {
		for p := e.Parent(); !element.IsNil(p); p = p.Parent() {
			if c.eval(p) {
				return true
			}
		}
		return false
	})
}

func relation(name string, c Condition, fn func(element.Element) bool) Condition {
	if !c.valid {
		return Condition{}
	}
	return Leaf(name+"("+c.String()+")", fn)
}

// Predicate returns a leaf with caller-supplied canonical text. Two
// predicates with equal text are considered equal, so text should describe
// fn unambiguously.
func Predicate(text string, fn func(element.Element) bool) Condition {
	return Leaf(text, fn)
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case nil:
		return "null"
	default:
		if f, ok := element.ToFloat(v); ok {
			return fmt.Sprintf("%g", f)
		}
		return fmt.Sprintf("%v", v)
	}
}

func valuesEqual(got, want any) bool {
	if gf, ok := element.ToFloat(got); ok {
		wf, ok := element.ToFloat(want)
		return ok && gf == wf
	}
	return reflect.DeepEqual(got, want)
}
