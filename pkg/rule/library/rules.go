package library

import (
	"fmt"
	"regexp"
	"strings"

	"a11y-hq/lumen/pkg/condition"
	"a11y-hq/lumen/pkg/element"
	"a11y-hq/lumen/pkg/rule"
)

var (
	hyperlink = condition.Hyperlink

	button = condition.Button

	namedTypes = condition.And(
		condition.IsContentOrControlElement,
		condition.Not(condition.ControlTypeIs(
			element.ControlTypeCustom,
			element.ControlTypeGroup,
			element.ControlTypePane,
			element.ControlTypeSeparator,
			element.ControlTypeThumb,
			element.ControlTypeTitleBar,
			element.ControlTypeText,
		)),
	)

	nonEmptyName = condition.StringPropertyMatches(element.PropertyName, regexp.MustCompile(`(?s).`))

	namedElement = condition.And(condition.IsContentOrControlElement, nonEmptyName)

	focusableCandidate = condition.And(
		condition.IsEnabled,
		condition.Not(condition.IsOffscreen),
		condition.ControlTypeIs(
			element.ControlTypeButton,
			element.ControlTypeCheckBox,
			element.ControlTypeComboBox,
			element.ControlTypeEdit,
			element.ControlTypeHyperlink,
			element.ControlTypeMenuItem,
			element.ControlTypeRadioButton,
			element.ControlTypeSlider,
			element.ControlTypeSplitButton,
			element.ControlTypeTabItem,
		),
	)

	listItem = condition.ListItem

	listContainer = condition.ControlTypeIs(
		element.ControlTypeList,
		element.ControlTypeComboBox,
		element.ControlTypeDataGrid,
		element.ControlTypeTree,
	)

	progressBar = condition.And(condition.ProgressBar, condition.RangeValue)
)

var definitions = []rule.Definition{
	{
		ID:        ControlShouldSupportInvokePattern,
		Condition: func() condition.Condition { return hyperlink },
		Evaluate: rule.Gated(hyperlink, func(e element.Element) (rule.EvaluationCode, error) {
			if e.SupportsPattern(element.PatternInvoke) {
				return rule.Pass, nil
			}
			return rule.Error, nil
		}),
	},
	{
		ID:        ButtonInvokeAndTogglePatterns,
		Condition: func() condition.Condition { return button },
		Evaluate: rule.Gated(button, func(e element.Element) (rule.EvaluationCode, error) {
			if e.SupportsPattern(element.PatternInvoke) && e.SupportsPattern(element.PatternToggle) {
				return rule.Error, nil
			}
			return rule.Pass, nil
		}),
	},
	{
		ID:        NameNotNull,
		Condition: func() condition.Condition { return namedTypes },
		Evaluate: rule.Gated(namedTypes, func(e element.Element) (rule.EvaluationCode, error) {
			if _, ok := e.Property(element.PropertyName); ok {
				return rule.Pass, nil
			}
			return rule.Error, nil
		}),
	},
	{
		ID:        NameNotWhiteSpace,
		Condition: func() condition.Condition { return namedElement },
		Evaluate: rule.Gated(namedElement, func(e element.Element) (rule.EvaluationCode, error) {
			if strings.TrimSpace(e.Name()) == "" {
				return rule.Error, nil
			}
			return rule.Pass, nil
		}),
	},
	{
		ID:        IsKeyboardFocusableShouldBeTrue,
		Condition: func() condition.Condition { return focusableCandidate },
		Evaluate: rule.Gated(focusableCandidate, func(e element.Element) (rule.EvaluationCode, error) {
			if element.BoolProperty(e, element.PropertyIsKeyboardFocusable) {
				return rule.Pass, nil
			}
			return rule.Open, nil
		}),
	},
	{
		ID:        ListItemParentIsList,
		Condition: func() condition.Condition { return listItem },
		Evaluate: rule.Gated(listItem, func(e element.Element) (rule.EvaluationCode, error) {
			parent := e.Parent()
			if element.IsNil(parent) {
				return rule.Error, nil
			}
			if listContainer.MustMatch(parent) {
				return rule.Pass, nil
			}
			return rule.Error, nil
		}),
	},
	{
		ID:        ProgressBarRangeValue,
		Condition: func() condition.Condition { return progressBar },
		Evaluate:  rule.Gated(progressBar, evaluateRangeValue),
	},
}

func evaluateRangeValue(e element.Element) (rule.EvaluationCode, error) {
	var vals [3]float64
	for i, id := range []element.PropertyID{element.PropertyRangeMinimum, element.PropertyRangeMaximum, element.PropertyRangeValue} {
		v, ok := element.NumberProperty(e, id)
		if !ok {
			return 0, fmt.Errorf("property %s is missing or not numeric", id)
		}
		vals[i] = v
	}

	lo, hi, value := vals[0], vals[1], vals[2]
	if lo < hi && value >= lo && value <= hi {
		return rule.Pass, nil
	}
	return rule.Error, nil
}

// Definitions returns the built-in rule definitions.
func Definitions() []rule.Definition {
	out := make([]rule.Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Rules builds every built-in rule against decls.
func Rules(decls *rule.Declarations) ([]*rule.Rule, error) {
	rules := make([]*rule.Rule, 0, len(definitions))
	for _, def := range definitions {
		r, err := rule.New(def, decls)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
