// Package logging provides structured logging for lumen.
//
// The package wraps log/slog with JSON, text and console formats, context
// fields for scans and rules, and masking of credentials that appear in
// rule pack configuration.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithScanID(ctx, scanID)
//	logger.InfoContext(ctx, "scan completed", "elements", n)
//
// Records logged through the *Context variants carry scan_id, rule_id,
// element_id, pack, request_id and trace_id when those are present.
package logging
