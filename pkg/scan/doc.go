// Package scan evaluates a rule catalog against an element tree.
//
// A Runner flattens the tree in pre-order and fans elements out to a fixed
// worker pool. Findings are collected into per-element slots, so the result
// order (element pre-order, then rule ID) does not depend on scheduling.
// Rule failures and panics become ExecutionError findings and never stop the
// scan.
package scan
