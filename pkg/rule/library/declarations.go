package library

import (
	"a11y-hq/lumen/pkg/element"
	"a11y-hq/lumen/pkg/rule"
)

// Rule identifiers.
const (
	ControlShouldSupportInvokePattern = "ControlShouldSupportInvokePattern"
	ButtonInvokeAndTogglePatterns     = "ButtonInvokeAndTogglePatterns"
	NameNotNull                       = "NameNotNull"
	NameNotWhiteSpace                 = "NameNotWhiteSpace"
	IsKeyboardFocusableShouldBeTrue   = "IsKeyboardFocusableShouldBeTrue"
	ListItemParentIsList              = "ListItemParentIsList"
	ProgressBarRangeValue             = "ProgressBarRangeValue"
)

var declarations = []rule.Declaration{
	{
		ID:          ControlShouldSupportInvokePattern,
		Description: "A hyperlink must support the Invoke pattern.",
		HowToFix:    "Implement the Invoke pattern on the hyperlink so assistive technology can activate it.",
		Standard:    rule.WCAG412NameRoleValue,
	},
	{
		ID:          ButtonInvokeAndTogglePatterns,
		Description: "A button must not support both the Invoke and Toggle patterns.",
		HowToFix:    "Expose either Invoke (push button) or Toggle (toggle button), not both.",
		Standard:    rule.WCAG412NameRoleValue,
	},
	{
		ID:          NameNotNull,
		Description: "A content or control element that is not a container, separator or text element must have a Name property.",
		HowToFix:    "Provide an accessible name, for example through a label or AutomationProperties.Name.",
		Standard:    rule.WCAG412NameRoleValue,
		PropertyID:  string(element.PropertyName),
	},
	{
		ID:          NameNotWhiteSpace,
		Description: "The Name property must not consist only of whitespace.",
		HowToFix:    "Replace the whitespace name with text that describes the element.",
		Standard:    rule.WCAG412NameRoleValue,
		PropertyID:  string(element.PropertyName),
	},
	{
		ID:          IsKeyboardFocusableShouldBeTrue,
		Description: "An enabled, on-screen interactive control should be keyboard focusable.",
		HowToFix:    "Make the control reachable with the keyboard, or confirm it is not meant to be.",
		Standard:    rule.WCAG211Keyboard,
		PropertyID:  string(element.PropertyIsKeyboardFocusable),
		FailureCode: rule.Open,
	},
	{
		ID:          ListItemParentIsList,
		Description: "A list item must be contained in a list, combo box, data grid or tree.",
		HowToFix:    "Place the list item inside a List (or equivalent container) element.",
		Standard:    rule.WCAG131InfoRelationships,
	},
	{
		ID:          ProgressBarRangeValue,
		Description: "A progress bar's range value must lie between its minimum and maximum.",
		HowToFix:    "Set RangeValue.Minimum below RangeValue.Maximum and keep Value within them.",
		Standard:    rule.WCAG412NameRoleValue,
		PropertyID:  string(element.PropertyRangeValue),
	},
}

// Declarations returns a copy of the built-in declaration table.
func Declarations() []rule.Declaration {
	out := make([]rule.Declaration, len(declarations))
	copy(out, declarations)
	return out
}

// Register adds the built-in declarations to decls.
func Register(decls *rule.Declarations) error {
	for _, d := range declarations {
		if err := decls.Register(d); err != nil {
			return err
		}
	}
	return nil
}
