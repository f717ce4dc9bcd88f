package condition

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"a11y-hq/lumen/pkg/element"
)

const tree = `
control_type: Window
name: Main
properties:
  IsEnabled: true
children:
  - control_type: Hyperlink
    name: Docs
    patterns: [Invoke]
    properties:
      IsEnabled: true
      IsKeyboardFocusable: true
      IsControlElement: true
  - control_type: Hyperlink
    name: "  "
    properties:
      IsOffscreen: true
  - control_type: Button
    patterns: [Invoke, Toggle]
  - control_type: List
    children:
      - control_type: ListItem
        name: first
  - control_type: ProgressBar
    patterns: [RangeValue]
    properties:
      RangeValue.Value: 30
`

func elements(t *testing.T) []element.Element {
	t.Helper()
	root, err := element.DecodeTree(strings.NewReader(tree), element.FormatYAML)
	if err != nil {
		t.Fatalf("DecodeTree() error = %v", err)
	}
	return element.Flatten(root)
}

func TestCombinatorIdentities(t *testing.T) {
	leaves := []Condition{Hyperlink, Invoke, IsEnabled, HasName, Not(Button)}

	for _, e := range elements(t) {
		if !And().MustMatch(e) {
			t.Errorf("And() should match %s", e.RuntimeID())
		}
		if Or().MustMatch(e) {
			t.Errorf("Or() should not match %s", e.RuntimeID())
		}
		for _, c := range leaves {
			if Not(Not(c)).MustMatch(e) != c.MustMatch(e) {
				t.Errorf("Not(Not(%s)) differs from %s on %s", c, c, e.RuntimeID())
			}
			if And(c).MustMatch(e) != c.MustMatch(e) || Or(c).MustMatch(e) != c.MustMatch(e) {
				t.Errorf("single-operand combinator differs from %s", c)
			}
			for _, d := range leaves {
				want := c.MustMatch(e) && d.MustMatch(e)
				if got := And(c, d).MustMatch(e); got != want {
					t.Errorf("And(%s, %s) on %s = %v, want %v", c, d, e.RuntimeID(), got, want)
				}
				want = c.MustMatch(e) || d.MustMatch(e)
				if got := Or(c, d).MustMatch(e); got != want {
					t.Errorf("Or(%s, %s) on %s = %v, want %v", c, d, e.RuntimeID(), got, want)
				}
			}
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		c    Condition
		want string
	}{
		{"empty and", And(), "TRUE"},
		{"empty or", Or(), "FALSE"},
		{"single operand", And(Hyperlink), "ControlType(Hyperlink)"},
		{"and", And(Hyperlink, Invoke), "(ControlType(Hyperlink) AND Pattern(Invoke))"},
		{"or", Or(Button, Not(Toggle)), "(ControlType(Button) OR NOT(Pattern(Toggle)))"},
		{"double not", Not(Not(Invoke)), "NOT(NOT(Pattern(Invoke)))"},
		{"control types sorted", ControlTypeIs(element.ControlTypeList, element.ControlTypeButton, element.ControlTypeList), "ControlType(Button, List)"},
		{"property equals", PropertyEquals(element.PropertyName, "OK"), `Name == "OK"`},
		{"range", PropertyInRange(element.PropertyRangeValue, 0, 100), "RangeValue.Value in [0, 100]"},
		{"regexp", StringPropertyMatches(element.PropertyName, regexp.MustCompile(`^\s*$`)), `Name =~ /^\s*$/`},
		{"parent", Parent(List), "Parent(ControlType(List))"},
		{"predicate", Predicate("Custom", func(element.Element) bool { return true }), "Custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalForm(t *testing.T) {
	a := And(Hyperlink, Not(IsOffscreen))
	b := And(ControlTypeIs(element.ControlTypeHyperlink), Not(PropertyEquals(element.PropertyIsOffscreen, true)))

	if !a.Equal(b) {
		t.Errorf("%s should equal %s", a, b)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal conditions should share a fingerprint")
	}
	if a.Equal(Or(Hyperlink, Not(IsOffscreen))) {
		t.Error("And and Or should not be equal")
	}
	if len(a.Fingerprint()) != 40 {
		t.Errorf("fingerprint length = %d, want 40", len(a.Fingerprint()))
	}
}

func TestMatches_Leaves(t *testing.T) {
	els := elements(t)
	byID := make(map[string]element.Element, len(els))
	for _, e := range els {
		byID[e.RuntimeID()] = e
	}

	tests := []struct {
		name string
		c    Condition
		id   string
		want bool
	}{
		{"hyperlink", Hyperlink, "0.0", true},
		{"not hyperlink", Hyperlink, "0.2", false},
		{"invoke", Invoke, "0.0", true},
		{"no invoke", Invoke, "0.1", false},
		{"enabled", IsEnabled, "0.0", true},
		{"enabled absent", IsEnabled, "0.2", false},
		{"content or control", IsContentOrControlElement, "0.0", true},
		{"name exists", HasName, "0.1", true},
		{"name absent", HasName, "0.2", false},
		{"whitespace name", StringPropertyMatches(element.PropertyName, regexp.MustCompile(`^\s+$`)), "0.1", true},
		{"int equals float", PropertyEquals(element.PropertyRangeValue, 30.0), "0.4", true},
		{"in range", PropertyInRange(element.PropertyRangeValue, 0, 30), "0.4", true},
		{"out of range", PropertyInRange(element.PropertyRangeValue, 31, 40), "0.4", false},
		{"parent list", Parent(List), "0.3.0", true},
		{"root has no parent", Parent(And()), "0", false},
		{"any child", AnyChild(ListItem), "0.3", true},
		{"any ancestor", AnyAncestor(Window), "0.3.0", true},
		{"no ancestor", AnyAncestor(Button), "0.3.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Matches(byID[tt.id])
			if err != nil {
				t.Fatalf("Matches() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s on %s = %v, want %v", tt.c, tt.id, got, tt.want)
			}
		})
	}
}

func TestMatches_Errors(t *testing.T) {
	e := elements(t)[0]

	_, err := Hyperlink.Matches(nil)
	var argErr *InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("Matches(nil) error = %v, want *InvalidArgumentError", err)
	}
	if !errors.Is(err, ErrNilElement) {
		t.Error("Matches(nil) should wrap ErrNilElement")
	}

	var typed *element.Node
	if _, err := And().Matches(typed); !errors.Is(err, ErrNilElement) {
		t.Errorf("Matches(typed nil) error = %v", err)
	}

	invalid := []Condition{
		{},
		And(Invoke, Condition{}),
		Not(Condition{}),
		Parent(Condition{}),
		StringPropertyMatches(element.PropertyName, nil),
		Leaf("nil", nil),
	}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("%s should be invalid", c)
		}
		if _, err := c.Matches(e); !errors.Is(err, ErrInvalidCondition) {
			t.Errorf("%s Matches() error = %v, want ErrInvalidCondition", c, err)
		}
	}
}

func TestImmutability(t *testing.T) {
	ops := []Condition{Hyperlink, Invoke}
	c := And(ops...)
	ops[0] = Button

	if c.String() != "(ControlType(Hyperlink) AND Pattern(Invoke))" {
		t.Errorf("mutating the operand slice changed the condition: %s", c)
	}

	got := c.Operands()
	got[1] = Toggle
	if c.Operands()[1].String() != "Pattern(Invoke)" {
		t.Error("Operands() should return a copy")
	}
}

func TestMatches_Concurrent(t *testing.T) {
	els := elements(t)
	c := Or(And(Hyperlink, Invoke), AnyAncestor(List), Not(HasName))

	want := make([]bool, len(els))
	for i, e := range els {
		want[i] = c.MustMatch(e)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, e := range els {
				if got := c.MustMatch(e); got != want[i] {
					t.Errorf("concurrent match on %s = %v, want %v", e.RuntimeID(), got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}
