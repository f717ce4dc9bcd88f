// Package server provides the lumen HTTP API.
//
// # Endpoints
//
//	GET    /health                  liveness
//	GET    /ready                   readiness (storage reachable, rules loaded)
//	GET    /version                 build information
//	GET    /metrics                 Prometheus metrics, when enabled
//	GET    /api/v1/rules            catalogued rules, ?origin=builtin|pack
//	GET    /api/v1/rules/status     active rule set version and counts
//	POST   /api/v1/rules/reload     reload rule packs
//	GET    /api/v1/rules/{id}       one rule
//	POST   /api/v1/scans            scan the tree snapshot in the body
//	GET    /api/v1/scans            stored scans, filtered and paginated
//	GET    /api/v1/scans/{id}       one scan with findings, ?format=csv
//	DELETE /api/v1/scans/{id}       delete a stored scan
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with an "error" message and optional "details".
//
// # Hardening
//
// server.tls serves HTTPS. server.auth requires an API key on /api/v1
// routes; health and metrics endpoints stay open. server.rate_limit caps scan
// submissions with a token bucket and answers 429 with Retry-After.
//
// # Usage
//
//	srv, err := server.New(&cfg.Server, server.Deps{
//	    Catalog: manager,
//	    Runner:  runner,
//	    Storage: store,
//	    Metrics: collector,
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	    Logger:  logger,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package server
