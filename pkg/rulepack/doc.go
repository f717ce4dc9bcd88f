// Package rulepack loads declarative rule packs from YAML files and compiles
// them into rule declarations and definitions.
//
// A pack lists rules, each with an applicability condition and an optional
// pass_when test, both written in the condition builder's node syntax.
// Matching elements that pass the test report Pass; the rest report the
// rule's failure code (Error unless the pack says open). Elements outside the
// condition report NotApplicable.
//
// Packs come from a Source. FileSource reads local paths; the git subpackage
// reads a repository. FileWatcher triggers reloads when pack files change.
package rulepack
