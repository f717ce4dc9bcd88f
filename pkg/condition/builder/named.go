package builder

import (
	"sort"

	"a11y-hq/lumen/pkg/condition"
)

var named = map[string]condition.Condition{
	"Button":                    condition.Button,
	"CheckBox":                  condition.CheckBox,
	"ComboBox":                  condition.ComboBox,
	"DataGrid":                  condition.DataGrid,
	"Edit":                      condition.Edit,
	"Hyperlink":                 condition.Hyperlink,
	"Image":                     condition.Image,
	"List":                      condition.List,
	"ListItem":                  condition.ListItem,
	"MenuItem":                  condition.MenuItem,
	"ProgressBar":               condition.ProgressBar,
	"RadioButton":               condition.RadioButton,
	"Slider":                    condition.Slider,
	"Text":                      condition.Text,
	"Tree":                      condition.Tree,
	"Window":                    condition.Window,
	"Invoke":                    condition.Invoke,
	"Toggle":                    condition.Toggle,
	"RangeValue":                condition.RangeValue,
	"Selection":                 condition.Selection,
	"ExpandCollapse":            condition.ExpandCollapse,
	"Value":                     condition.Value,
	"IsEnabled":                 condition.IsEnabled,
	"IsOffscreen":               condition.IsOffscreen,
	"IsKeyboardFocusable":       condition.IsKeyboardFocusable,
	"IsContentElement":          condition.IsContentElement,
	"IsControlElement":          condition.IsControlElement,
	"IsContentOrControlElement": condition.IsContentOrControlElement,
	"HasName":                   condition.HasName,
}

// Named returns the predefined condition called name.
func Named(name string) (condition.Condition, bool) {
	c, ok := named[name]
	return c, ok
}

// Names returns the names accepted by the "is" key, sorted.
func Names() []string {
	out := make([]string, 0, len(named))
	for n := range named {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
