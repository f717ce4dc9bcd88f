package element

import "reflect"

// Element is a read-only node of an accessibility tree.
//
// Implementations must not fail for a well-formed node and must tolerate
// concurrent read-only access.
type Element interface {
	// RuntimeID uniquely identifies the element within its tree.
	RuntimeID() string

	// ControlType returns the UI Automation control type.
	ControlType() ControlType

	// LocalizedControlType returns the localized control type string.
	LocalizedControlType() string

	// Name returns the Name property, or "" when it is absent.
	Name() string

	// SupportsPattern reports whether the element supports pattern p.
	SupportsPattern(p Pattern) bool

	// Patterns returns the supported patterns in ascending identifier order.
	Patterns() []Pattern

	// Property returns the value of property id and whether it is present.
	Property(id PropertyID) (any, bool)

	// Parent returns the parent element, or nil at the root.
	Parent() Element

	// Children returns the child elements in document order.
	Children() []Element
}

// IsNil reports whether e is absent: a nil interface or a typed nil pointer.
func IsNil(e Element) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return v.IsNil()
	}
	return false
}

// WalkFunc is called for every element visited by Walk. Returning false
// skips the element's descendants.
type WalkFunc func(e Element, depth int) bool

// Walk visits root and its descendants in pre-order.
func Walk(root Element, fn WalkFunc) {
	if IsNil(root) {
		return
	}
	walk(root, 0, fn)
}

func walk(e Element, depth int, fn WalkFunc) {
	if !fn(e, depth) {
		return
	}
	for _, child := range e.Children() {
		walk(child, depth+1, fn)
	}
}

// Flatten returns root and its descendants in pre-order.
func Flatten(root Element) []Element {
	var out []Element
	Walk(root, func(e Element, _ int) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Facts returns a flat, read-only view of e for expression languages.
//
// Keys: RuntimeID, ControlType, ControlTypeID, LocalizedControlType, Name,
// HasName, Patterns, Properties, ChildCount, ParentControlType, IsEnabled,
// IsOffscreen, IsKeyboardFocusable.
func Facts(e Element) map[string]any {
	patterns := e.Patterns()
	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.String())
	}

	props := make(map[string]any)
	if lister, ok := e.(interface{ PropertyIDs() []PropertyID }); ok {
		for _, id := range lister.PropertyIDs() {
			if v, ok := e.Property(id); ok {
				props[string(id)] = v
			}
		}
	}

	parentType := ""
	if parent := e.Parent(); !IsNil(parent) {
		parentType = parent.ControlType().String()
	}

	_, hasName := e.Property(PropertyName)

	return map[string]any{
		"RuntimeID":            e.RuntimeID(),
		"ControlType":          e.ControlType().String(),
		"ControlTypeID":        int(e.ControlType()),
		"LocalizedControlType": e.LocalizedControlType(),
		"Name":                 e.Name(),
		"HasName":              hasName,
		"Patterns":             names,
		"Properties":           props,
		"ChildCount":           len(e.Children()),
		"ParentControlType":    parentType,
		"IsEnabled":            BoolProperty(e, PropertyIsEnabled),
		"IsOffscreen":          BoolProperty(e, PropertyIsOffscreen),
		"IsKeyboardFocusable":  BoolProperty(e, PropertyIsKeyboardFocusable),
	}
}
