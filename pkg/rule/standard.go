package rule

// Standard references the accessibility criterion a rule enforces.
type Standard string

// WCAG 2.1 success criteria referenced by the built-in rules.
const (
	WCAG111NonTextContent     Standard = "WCAG 2.1 1.1.1 Non-text Content"
	WCAG131InfoRelationships  Standard = "WCAG 2.1 1.3.1 Info and Relationships"
	WCAG211Keyboard           Standard = "WCAG 2.1 2.1.1 Keyboard"
	WCAG241BypassBlocks       Standard = "WCAG 2.1 2.4.1 Bypass Blocks"
	WCAG244LinkPurpose        Standard = "WCAG 2.1 2.4.4 Link Purpose (In Context)"
	WCAG412NameRoleValue      Standard = "WCAG 2.1 4.1.2 Name, Role, Value"
	SectionUIAutomationNaming Standard = "UI Automation Naming Guidance"
)
