package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// ScanIDKey is the context key for scan identifiers.
	ScanIDKey contextKey = "scan_id"

	// RuleIDKey is the context key for rule identifiers.
	RuleIDKey contextKey = "rule_id"

	// ElementIDKey is the context key for element runtime IDs.
	ElementIDKey contextKey = "element_id"

	// PackKey is the context key for rule pack sources.
	PackKey contextKey = "pack"

	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithScanID adds a scan ID to the context.
func WithScanID(ctx context.Context, scanID string) context.Context {
	return withString(ctx, ScanIDKey, scanID)
}

// GetScanID retrieves the scan ID from the context.
func GetScanID(ctx context.Context) string {
	return getString(ctx, ScanIDKey)
}

// WithRuleID adds a rule ID to the context.
func WithRuleID(ctx context.Context, ruleID string) context.Context {
	return withString(ctx, RuleIDKey, ruleID)
}

// GetRuleID retrieves the rule ID from the context.
func GetRuleID(ctx context.Context) string {
	return getString(ctx, RuleIDKey)
}

// WithElementID adds an element runtime ID to the context.
func WithElementID(ctx context.Context, elementID string) context.Context {
	return withString(ctx, ElementIDKey, elementID)
}

// GetElementID retrieves the element runtime ID from the context.
func GetElementID(ctx context.Context) string {
	return getString(ctx, ElementIDKey)
}

// WithPack adds a rule pack source to the context.
func WithPack(ctx context.Context, pack string) context.Context {
	return withString(ctx, PackKey, pack)
}

// GetPack retrieves the rule pack source from the context.
func GetPack(ctx context.Context) string {
	return getString(ctx, PackKey)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return getString(ctx, RequestIDKey)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withString(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	return getString(ctx, TraceIDKey)
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range []contextKey{RequestIDKey, ScanIDKey, RuleIDKey, ElementIDKey, PackKey, TraceIDKey} {
		if v := getString(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}
