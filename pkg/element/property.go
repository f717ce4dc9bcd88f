package element

// PropertyID names an element property.
type PropertyID string

// Well-known property identifiers.
const (
	PropertyName                PropertyID = "Name"
	PropertyAutomationID        PropertyID = "AutomationId"
	PropertyClassName           PropertyID = "ClassName"
	PropertyHelpText            PropertyID = "HelpText"
	PropertyFrameworkID         PropertyID = "FrameworkId"
	PropertyIsEnabled           PropertyID = "IsEnabled"
	PropertyIsOffscreen         PropertyID = "IsOffscreen"
	PropertyIsKeyboardFocusable PropertyID = "IsKeyboardFocusable"
	PropertyIsContentElement    PropertyID = "IsContentElement"
	PropertyIsControlElement    PropertyID = "IsControlElement"
	PropertyRangeMinimum        PropertyID = "RangeValue.Minimum"
	PropertyRangeMaximum        PropertyID = "RangeValue.Maximum"
	PropertyRangeValue          PropertyID = "RangeValue.Value"
)

// BoolProperty returns the boolean value of id, or false when the property is
// absent or not a boolean.
func BoolProperty(e Element, id PropertyID) bool {
	v, ok := e.Property(id)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// StringProperty returns the string value of id.
func StringProperty(e Element, id PropertyID) (string, bool) {
	v, ok := e.Property(id)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumberProperty returns the numeric value of id as a float64. Integer and
// floating point values are both accepted.
func NumberProperty(e Element, id PropertyID) (float64, bool) {
	v, ok := e.Property(id)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// ToFloat converts the numeric kinds produced by YAML and JSON decoding.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
