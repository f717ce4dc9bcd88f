package rule

import (
	"fmt"
	"sort"
	"sync"
)

// Declaration is the static descriptive record attached to a rule.
type Declaration struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	HowToFix    string   `json:"how_to_fix,omitempty" yaml:"how_to_fix,omitempty"`
	Standard    Standard `json:"standard,omitempty" yaml:"standard,omitempty"`
	// PropertyID names the element property the rule inspects, if any.
	PropertyID string `json:"property_id,omitempty" yaml:"property_id,omitempty"`
	// FailureCode is the verdict the rule reports on violation.
	FailureCode EvaluationCode `json:"failure_code,omitempty" yaml:"failure_code,omitempty"`
}

// Declarations is a thread-safe table of declarations keyed by rule ID.
type Declarations struct {
	mu    sync.RWMutex
	decls map[string]Declaration
}

// NewDeclarations creates an empty declaration table.
func NewDeclarations() *Declarations {
	return &Declarations{decls: make(map[string]Declaration)}
}

// Register adds d to the table. IDs must be unique.
func (t *Declarations) Register(d Declaration) error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDeclaration)
	}
	if d.FailureCode == 0 {
		d.FailureCode = Error
	}
	if !d.FailureCode.Valid() {
		return fmt.Errorf("%w: %s: failure code %d", ErrInvalidDeclaration, d.ID, int(d.FailureCode))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.decls[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDeclaration, d.ID)
	}
	t.decls[d.ID] = d
	return nil
}

// MustRegister is Register that panics on error. It is meant for
// process-start tables.
func (t *Declarations) MustRegister(ds ...Declaration) {
	for _, d := range ds {
		if err := t.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the declaration for id.
func (t *Declarations) Lookup(id string) (Declaration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.decls[id]
	return d, ok
}

// IDs returns all registered IDs, sorted.
func (t *Declarations) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.decls))
	for id := range t.decls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of declarations.
func (t *Declarations) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.decls)
}
