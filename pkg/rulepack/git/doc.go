// Package git loads rule packs from a Git repository and keeps them current.
//
// Repository wraps a local clone made with go-git. Source adapts it to
// rulepack.Source. Watcher polls the remote, reloads when pack files change,
// and checks out the previous commit again when the new packs are rejected.
package git
