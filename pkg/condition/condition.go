package condition

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"a11y-hq/lumen/pkg/element"
)

// Kind tags the variant held by a Condition.
type Kind int

const (
	// KindInvalid is the kind of the zero Condition.
	KindInvalid Kind = iota
	// KindLeaf is a predicate over a single element.
	KindLeaf
	// KindAnd matches when every operand matches.
	KindAnd
	// KindOr matches when any operand matches.
	KindOr
	// KindNot inverts its single operand.
	KindNot
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	default:
		return "invalid"
	}
}

// Condition is an immutable predicate over elements.
type Condition struct {
	kind     Kind
	text     string
	pred     func(element.Element) bool
	children []Condition
	valid    bool
}

// Leaf returns a leaf condition with canonical text and predicate fn. The
// predicate is only called with non-nil elements and must not mutate them.
// A nil fn yields an invalid condition.
func Leaf(text string, fn func(element.Element) bool) Condition {
	return Condition{kind: KindLeaf, text: text, pred: fn, valid: fn != nil}
}

// And returns a condition matching elements matched by every c.
func And(cs ...Condition) Condition {
	return combine(KindAnd, cs)
}

// Or returns a condition matching elements matched by any c.
func Or(cs ...Condition) Condition {
	return combine(KindOr, cs)
}

// Not returns a condition matching elements not matched by c.
func Not(c Condition) Condition {
	return Condition{
		kind:     KindNot,
		children: []Condition{c},
		valid:    c.valid,
	}
}

func combine(kind Kind, cs []Condition) Condition {
	if len(cs) == 1 {
		return cs[0]
	}
	children := make([]Condition, len(cs))
	copy(children, cs)
	valid := true
	for _, c := range children {
		valid = valid && c.valid
	}
	return Condition{kind: kind, children: children, valid: valid}
}

// Kind returns the variant tag.
func (c Condition) Kind() Kind { return c.kind }

// Valid reports whether c and all of its operands were properly constructed.
func (c Condition) Valid() bool { return c.valid }

// Operands returns a copy of the operands of a combinator.
func (c Condition) Operands() []Condition {
	out := make([]Condition, len(c.children))
	copy(out, c.children)
	return out
}

// Matches reports whether e satisfies c.
func (c Condition) Matches(e element.Element) (bool, error) {
	if !c.valid {
		return false, ErrInvalidCondition
	}
	if element.IsNil(e) {
		return false, NilElementError("element")
	}
	return c.eval(e), nil
}

// MustMatch is Matches for callers that have already checked the element and
// the condition. It panics on error.
func (c Condition) MustMatch(e element.Element) bool {
	ok, err := c.Matches(e)
	if err != nil {
		panic(err)
	}
	return ok
}

func (c Condition) eval(e element.Element) bool {
	switch c.kind {
	case KindLeaf:
		return c.pred(e)
	case KindAnd:
		for _, child := range c.children {
			if !child.eval(e) {
				return false
			}
		}
		return true
	case KindOr:
		for _, child := range c.children {
			if child.eval(e) {
				return true
			}
		}
		return false
	case KindNot:
		return !c.children[0].eval(e)
	default:
		return false
	}
}

// String returns the canonical text of c.
func (c Condition) String() string {
	var b strings.Builder
	c.write(&b)
	return b.String()
}

func (c Condition) write(b *strings.Builder) {
	switch c.kind {
	case KindLeaf:
		b.WriteString(c.text)
	case KindAnd:
		c.writeList(b, " AND ", "TRUE")
	case KindOr:
		c.writeList(b, " OR ", "FALSE")
	case KindNot:
		b.WriteString("NOT(")
		c.children[0].write(b)
		b.WriteByte(')')
	default:
		b.WriteString("<invalid>")
	}
}

func (c Condition) writeList(b *strings.Builder, sep, empty string) {
	if len(c.children) == 0 {
		b.WriteString(empty)
		return
	}
	b.WriteByte('(')
	for i, child := range c.children {
		if i > 0 {
			b.WriteString(sep)
		}
		child.write(b)
	}
	b.WriteByte(')')
}

// Fingerprint returns a stable hex digest of the canonical text.
func (c Condition) Fingerprint() string {
	sum := sha1.Sum([]byte(c.String()))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether c and other have the same canonical form.
func (c Condition) Equal(other Condition) bool {
	return c.valid == other.valid && c.String() == other.String()
}
