package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on lumen spans.
const (
	AttrScanID       = "lumen.scan.id"
	AttrScanElements = "lumen.scan.elements"
	AttrScanRules    = "lumen.scan.rules"
	AttrScanWorkers  = "lumen.scan.workers"

	AttrRuleID      = "lumen.rule.id"
	AttrRuleCode    = "lumen.rule.code"
	AttrElementID   = "lumen.element.id"
	AttrControlType = "lumen.element.control_type"

	AttrPackSource = "lumen.pack.source"
	AttrPackRules  = "lumen.pack.rules"

	AttrErrorMessage = "error.message"
)

// SetScanAttributes sets scan-level attributes on a span.
func SetScanAttributes(span trace.Span, scanID string, elements, rules, workers int) {
	span.SetAttributes(
		attribute.String(AttrScanID, scanID),
		attribute.Int(AttrScanElements, elements),
		attribute.Int(AttrScanRules, rules),
		attribute.Int(AttrScanWorkers, workers),
	)
}

// SetFindingAttributes records a single rule verdict on an element.
func SetFindingAttributes(span trace.Span, ruleID, elementID, controlType, code string) {
	span.SetAttributes(
		attribute.String(AttrRuleID, ruleID),
		attribute.String(AttrElementID, elementID),
		attribute.String(AttrControlType, controlType),
		attribute.String(AttrRuleCode, code),
	)
}

// SetPackAttributes sets rule pack attributes on a span.
func SetPackAttributes(span trace.Span, source string, rules int) {
	span.SetAttributes(
		attribute.String(AttrPackSource, source),
		attribute.Int(AttrPackRules, rules),
	)
}
