package condition

import "a11y-hq/lumen/pkg/element"

// Control type leaves.
var (
	Button      = ControlTypeIs(element.ControlTypeButton)
	CheckBox    = ControlTypeIs(element.ControlTypeCheckBox)
	ComboBox    = ControlTypeIs(element.ControlTypeComboBox)
	DataGrid    = ControlTypeIs(element.ControlTypeDataGrid)
	Edit        = ControlTypeIs(element.ControlTypeEdit)
	Hyperlink   = ControlTypeIs(element.ControlTypeHyperlink)
	Image       = ControlTypeIs(element.ControlTypeImage)
	List        = ControlTypeIs(element.ControlTypeList)
	ListItem    = ControlTypeIs(element.ControlTypeListItem)
	MenuItem    = ControlTypeIs(element.ControlTypeMenuItem)
	ProgressBar = ControlTypeIs(element.ControlTypeProgressBar)
	RadioButton = ControlTypeIs(element.ControlTypeRadioButton)
	Slider      = ControlTypeIs(element.ControlTypeSlider)
	Text        = ControlTypeIs(element.ControlTypeText)
	Tree        = ControlTypeIs(element.ControlTypeTree)
	Window      = ControlTypeIs(element.ControlTypeWindow)
)

// Pattern leaves.
var (
	Invoke         = SupportsPattern(element.PatternInvoke)
	Toggle         = SupportsPattern(element.PatternToggle)
	RangeValue     = SupportsPattern(element.PatternRangeValue)
	Selection      = SupportsPattern(element.PatternSelection)
	ExpandCollapse = SupportsPattern(element.PatternExpandCollapse)
	Value          = SupportsPattern(element.PatternValue)
)

// Property leaves.
var (
	IsEnabled           = PropertyEquals(element.PropertyIsEnabled, true)
	IsOffscreen         = PropertyEquals(element.PropertyIsOffscreen, true)
	IsKeyboardFocusable = PropertyEquals(element.PropertyIsKeyboardFocusable, true)
	IsContentElement    = PropertyEquals(element.PropertyIsContentElement, true)
	IsControlElement    = PropertyEquals(element.PropertyIsControlElement, true)
	HasName             = PropertyExists(element.PropertyName)

	IsContentOrControlElement = Or(IsContentElement, IsControlElement)
)
