// Package catalog holds the set of ready rules.
//
// Build runs the built-in library and compiled rule packs through the rule
// construction pipeline into an immutable Set. Manager owns the active Set,
// rebuilds it when packs change on disk or in Git, and swaps the new Set in
// atomically; a failed rebuild leaves the previous Set active.
package catalog
