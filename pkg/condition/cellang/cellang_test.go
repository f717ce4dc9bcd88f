package cellang

import (
	"errors"
	"strings"
	"testing"

	"a11y-hq/lumen/pkg/element"
)

func TestCompile(t *testing.T) {
	root, err := element.DecodeTree(strings.NewReader(`
control_type: Window
children:
  - control_type: Button
    name: OK
    patterns: [Invoke, Toggle]
    properties:
      IsEnabled: true
`), element.FormatYAML)
	if err != nil {
		t.Fatalf("DecodeTree() error = %v", err)
	}
	button := root.Children()[0]

	tests := []struct {
		src  string
		want bool
	}{
		{`ControlType == "Button"`, true},
		{`"Invoke" in Patterns && "Toggle" in Patterns`, true},
		{`IsEnabled && !IsOffscreen`, true},
		{`ParentControlType == "Window" && ChildCount == 0`, true},
		{`Name.startsWith("Can")`, false},
		{`Properties["Missing"] == 1`, false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if c.String() != "cel("+tt.src+")" {
				t.Errorf("String() = %q", c.String())
			}
			got, err := c.Matches(button)
			if err != nil {
				t.Fatalf("Matches() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, src := range []string{"", "ControlType ==", "Unknown == 1", `"text"`} {
		_, err := Compile(src)
		var compileErr *CompileError
		if !errors.As(err, &compileErr) {
			t.Errorf("Compile(%q) error = %v, want *CompileError", src, err)
		}
	}
}
