package element

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NodeSpec is the serialisable description of a snapshot node.
//
// Name is a pointer so that an absent Name property can be told apart from an
// empty one.
type NodeSpec struct {
	RuntimeID            string         `yaml:"runtime_id,omitempty" json:"runtime_id,omitempty"`
	ControlType          string         `yaml:"control_type" json:"control_type"`
	LocalizedControlType string         `yaml:"localized_control_type,omitempty" json:"localized_control_type,omitempty"`
	Name                 *string        `yaml:"name,omitempty" json:"name,omitempty"`
	Patterns             []string       `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Properties           map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
	Children             []NodeSpec     `yaml:"children,omitempty" json:"children,omitempty"`
}

// Node is an immutable snapshot element.
type Node struct {
	runtimeID   string
	controlType ControlType
	localized   string
	patterns    []Pattern
	props       map[PropertyID]any
	parent      *Node
	children    []*Node
}

var _ Element = (*Node)(nil)

// Build converts spec into a linked, immutable tree and returns its root.
// Missing runtime IDs are derived from the node's position ("0", "0.1", ...).
func Build(spec NodeSpec) (*Node, error) {
	return build(spec, nil, "0")
}

func build(spec NodeSpec, parent *Node, path string) (*Node, error) {
	ct, err := ParseControlType(spec.ControlType)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", path, err)
	}

	n := &Node{
		runtimeID:   spec.RuntimeID,
		controlType: ct,
		localized:   spec.LocalizedControlType,
		props:       make(map[PropertyID]any, len(spec.Properties)+1),
		parent:      parent,
	}
	if n.runtimeID == "" {
		n.runtimeID = path
	}
	if n.localized == "" {
		n.localized = strings.ToLower(ct.String())
	}

	seen := make(map[Pattern]bool, len(spec.Patterns))
	for _, name := range spec.Patterns {
		p, err := ParsePattern(name)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.runtimeID, err)
		}
		if !seen[p] {
			seen[p] = true
			n.patterns = append(n.patterns, p)
		}
	}
	sort.Slice(n.patterns, func(i, j int) bool { return n.patterns[i] < n.patterns[j] })

	for k, v := range spec.Properties {
		n.props[PropertyID(k)] = v
	}
	if spec.Name != nil {
		n.props[PropertyName] = *spec.Name
	}

	n.children = make([]*Node, 0, len(spec.Children))
	for i, cs := range spec.Children {
		child, err := build(cs, n, path+"."+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}

	return n, nil
}

// RuntimeID implements Element.
func (n *Node) RuntimeID() string { return n.runtimeID }

// ControlType implements Element.
func (n *Node) ControlType() ControlType { return n.controlType }

// LocalizedControlType implements Element.
func (n *Node) LocalizedControlType() string { return n.localized }

// Name implements Element.
func (n *Node) Name() string {
	s, _ := n.props[PropertyName].(string)
	return s
}

// SupportsPattern implements Element.
func (n *Node) SupportsPattern(p Pattern) bool {
	for _, have := range n.patterns {
		if have == p {
			return true
		}
	}
	return false
}

// Patterns implements Element. The returned slice is a copy.
func (n *Node) Patterns() []Pattern {
	out := make([]Pattern, len(n.patterns))
	copy(out, n.patterns)
	return out
}

// Property implements Element.
func (n *Node) Property(id PropertyID) (any, bool) {
	v, ok := n.props[id]
	return v, ok
}

// PropertyIDs returns the identifiers of all present properties, sorted.
func (n *Node) PropertyIDs() []PropertyID {
	ids := make([]PropertyID, 0, len(n.props))
	for id := range n.props {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Parent implements Element.
func (n *Node) Parent() Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children implements Element.
func (n *Node) Children() []Element {
	out := make([]Element, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// String returns a short description used in logs.
func (n *Node) String() string {
	if name := n.Name(); name != "" {
		return fmt.Sprintf("%s %q [%s]", n.controlType, name, n.runtimeID)
	}
	return fmt.Sprintf("%s [%s]", n.controlType, n.runtimeID)
}
