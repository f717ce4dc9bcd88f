// Package telemetry groups lumen's observability packages.
//
//   - logging: structured logging over log/slog
//   - metrics: Prometheus metrics for evaluations, scans and rule sets
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness endpoints
package telemetry
