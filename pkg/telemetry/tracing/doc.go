// Package tracing provides OpenTelemetry tracing for scans.
//
// Spans are exported over OTLP gRPC. When tracing is disabled the Tracer
// returns noop spans. A scan produces one "scan" span with scan-level
// attributes; ExecutionError findings are recorded as span events.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "scan")
//	defer span.End()
package tracing
