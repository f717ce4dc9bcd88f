// Package element defines the accessibility element tree consumed by rules.
//
// An Element is a read-only node in a UI Automation style tree. It exposes a
// control type, the interaction patterns it supports, a set of typed
// properties, and links to its parent and children. Conditions and rules only
// ever query an Element; they never mutate it.
//
// # Snapshots
//
// Live trees are captured by an external provider. For offline evaluation the
// package ships Node, an immutable snapshot built from a NodeSpec description:
//
//	root, err := element.LoadTree("testdata/login-dialog.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	element.Walk(root, func(e element.Element, depth int) bool {
//	    fmt.Println(strings.Repeat("  ", depth), e.ControlType(), e.Name())
//	    return true
//	})
//
// A snapshot file looks like:
//
//	control_type: Window
//	name: Sign in
//	patterns: [Window, Transform]
//	children:
//	  - control_type: Hyperlink
//	    name: Forgot password?
//	    patterns: [Invoke]
//
// # Concurrency
//
// Node values are immutable once Build returns and may be read from many
// goroutines at once.
package element
