// Lumen evaluates accessibility rules against UI element trees.
//
// It loads a catalog of rules (the built-in library plus declarative YAML
// rule packs from disk or Git), walks tree snapshots, and reports a verdict
// for every rule on every element:
//   - Pass, Error and Open verdicts with how-to-fix guidance
//   - Stored scan history in SQLite with retention pruning
//   - An HTTP API for submitting snapshots and browsing results
//
// Usage:
//
//	# Scan a snapshot with the built-in rules
//	lumen scan window.yaml
//
//	# Scan with a config file and fail CI on Open verdicts too
//	lumen scan --config lumen.yaml --fail-on open window.yaml
//
//	# List the active rules
//	lumen rules list
//
//	# Validate rule packs
//	lumen lint rules/
//
//	# Serve the HTTP API
//	lumen serve --config lumen.yaml
package main

func main() {
	Execute()
}
