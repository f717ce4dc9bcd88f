package element

import (
	"fmt"
	"strings"
)

// ControlType is a UI Automation control type identifier.
type ControlType int

// Control type identifiers as defined by UI Automation.
const (
	ControlTypeButton       ControlType = 50000
	ControlTypeCalendar     ControlType = 50001
	ControlTypeCheckBox     ControlType = 50002
	ControlTypeComboBox     ControlType = 50003
	ControlTypeEdit         ControlType = 50004
	ControlTypeHyperlink    ControlType = 50005
	ControlTypeImage        ControlType = 50006
	ControlTypeListItem     ControlType = 50007
	ControlTypeList         ControlType = 50008
	ControlTypeMenu         ControlType = 50009
	ControlTypeMenuBar      ControlType = 50010
	ControlTypeMenuItem     ControlType = 50011
	ControlTypeProgressBar  ControlType = 50012
	ControlTypeRadioButton  ControlType = 50013
	ControlTypeScrollBar    ControlType = 50014
	ControlTypeSlider       ControlType = 50015
	ControlTypeSpinner      ControlType = 50016
	ControlTypeStatusBar    ControlType = 50017
	ControlTypeTab          ControlType = 50018
	ControlTypeTabItem      ControlType = 50019
	ControlTypeText         ControlType = 50020
	ControlTypeToolBar      ControlType = 50021
	ControlTypeToolTip      ControlType = 50022
	ControlTypeTree         ControlType = 50023
	ControlTypeTreeItem     ControlType = 50024
	ControlTypeCustom       ControlType = 50025
	ControlTypeGroup        ControlType = 50026
	ControlTypeThumb        ControlType = 50027
	ControlTypeDataGrid     ControlType = 50028
	ControlTypeDataItem     ControlType = 50029
	ControlTypeDocument     ControlType = 50030
	ControlTypeSplitButton  ControlType = 50031
	ControlTypeWindow       ControlType = 50032
	ControlTypePane         ControlType = 50033
	ControlTypeHeader       ControlType = 50034
	ControlTypeHeaderItem   ControlType = 50035
	ControlTypeTable        ControlType = 50036
	ControlTypeTitleBar     ControlType = 50037
	ControlTypeSeparator    ControlType = 50038
	ControlTypeSemanticZoom ControlType = 50039
	ControlTypeAppBar       ControlType = 50040
)

var controlTypeNames = map[ControlType]string{
	ControlTypeButton:       "Button",
	ControlTypeCalendar:     "Calendar",
	ControlTypeCheckBox:     "CheckBox",
	ControlTypeComboBox:     "ComboBox",
	ControlTypeEdit:         "Edit",
	ControlTypeHyperlink:    "Hyperlink",
	ControlTypeImage:        "Image",
	ControlTypeListItem:     "ListItem",
	ControlTypeList:         "List",
	ControlTypeMenu:         "Menu",
	ControlTypeMenuBar:      "MenuBar",
	ControlTypeMenuItem:     "MenuItem",
	ControlTypeProgressBar:  "ProgressBar",
	ControlTypeRadioButton:  "RadioButton",
	ControlTypeScrollBar:    "ScrollBar",
	ControlTypeSlider:       "Slider",
	ControlTypeSpinner:      "Spinner",
	ControlTypeStatusBar:    "StatusBar",
	ControlTypeTab:          "Tab",
	ControlTypeTabItem:      "TabItem",
	ControlTypeText:         "Text",
	ControlTypeToolBar:      "ToolBar",
	ControlTypeToolTip:      "ToolTip",
	ControlTypeTree:         "Tree",
	ControlTypeTreeItem:     "TreeItem",
	ControlTypeCustom:       "Custom",
	ControlTypeGroup:        "Group",
	ControlTypeThumb:        "Thumb",
	ControlTypeDataGrid:     "DataGrid",
	ControlTypeDataItem:     "DataItem",
	ControlTypeDocument:     "Document",
	ControlTypeSplitButton:  "SplitButton",
	ControlTypeWindow:       "Window",
	ControlTypePane:         "Pane",
	ControlTypeHeader:       "Header",
	ControlTypeHeaderItem:   "HeaderItem",
	ControlTypeTable:        "Table",
	ControlTypeTitleBar:     "TitleBar",
	ControlTypeSeparator:    "Separator",
	ControlTypeSemanticZoom: "SemanticZoom",
	ControlTypeAppBar:       "AppBar",
}

var controlTypesByName = func() map[string]ControlType {
	m := make(map[string]ControlType, len(controlTypeNames))
	for ct, name := range controlTypeNames {
		m[strings.ToLower(name)] = ct
	}
	return m
}()

// String returns the canonical control type name, or "ControlType(<id>)" for
// identifiers outside the known range.
func (ct ControlType) String() string {
	if name, ok := controlTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("ControlType(%d)", int(ct))
}

// Known reports whether ct is a defined UI Automation control type.
func (ct ControlType) Known() bool {
	_, ok := controlTypeNames[ct]
	return ok
}

// ParseControlType resolves a control type by name (case-insensitive).
func ParseControlType(name string) (ControlType, error) {
	if ct, ok := controlTypesByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return ct, nil
	}
	return 0, fmt.Errorf("unknown control type %q", name)
}
