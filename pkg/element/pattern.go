package element

import (
	"fmt"
	"strings"
)

// Pattern is a UI Automation control pattern identifier.
type Pattern int

// Pattern identifiers as defined by UI Automation.
const (
	PatternInvoke            Pattern = 10000
	PatternSelection         Pattern = 10001
	PatternValue             Pattern = 10002
	PatternRangeValue        Pattern = 10003
	PatternScroll            Pattern = 10004
	PatternExpandCollapse    Pattern = 10005
	PatternGrid              Pattern = 10006
	PatternGridItem          Pattern = 10007
	PatternMultipleView      Pattern = 10008
	PatternWindow            Pattern = 10009
	PatternSelectionItem     Pattern = 10010
	PatternDock              Pattern = 10011
	PatternTable             Pattern = 10012
	PatternTableItem         Pattern = 10013
	PatternText              Pattern = 10014
	PatternToggle            Pattern = 10015
	PatternTransform         Pattern = 10016
	PatternScrollItem        Pattern = 10017
	PatternLegacyIAccessible Pattern = 10018
)

var patternNames = map[Pattern]string{
	PatternInvoke:            "Invoke",
	PatternSelection:         "Selection",
	PatternValue:             "Value",
	PatternRangeValue:        "RangeValue",
	PatternScroll:            "Scroll",
	PatternExpandCollapse:    "ExpandCollapse",
	PatternGrid:              "Grid",
	PatternGridItem:          "GridItem",
	PatternMultipleView:      "MultipleView",
	PatternWindow:            "Window",
	PatternSelectionItem:     "SelectionItem",
	PatternDock:              "Dock",
	PatternTable:             "Table",
	PatternTableItem:         "TableItem",
	PatternText:              "Text",
	PatternToggle:            "Toggle",
	PatternTransform:         "Transform",
	PatternScrollItem:        "ScrollItem",
	PatternLegacyIAccessible: "LegacyIAccessible",
}

var patternsByName = func() map[string]Pattern {
	m := make(map[string]Pattern, len(patternNames))
	for p, name := range patternNames {
		m[strings.ToLower(name)] = p
	}
	return m
}()

// String returns the canonical pattern name.
func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// ParsePattern resolves a pattern by name (case-insensitive). A trailing
// "Pattern" suffix is accepted, so "InvokePattern" and "Invoke" are equivalent.
func ParsePattern(name string) (Pattern, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, "pattern")
	if p, ok := patternsByName[key]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown pattern %q", name)
}
