package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"a11y-hq/lumen/pkg/rule"
)

// Source labels for rules.
const (
	SourceBuiltin = "builtin"
	SourcePack    = "pack"
)

// Entry is a catalogued rule together with where it came from.
type Entry struct {
	Rule *rule.Rule

	// Origin is SourceBuiltin or SourcePack.
	Origin string

	// File is the pack file that declared the rule, empty for builtins.
	File string
}

// Set is an immutable, ordered collection of ready rules. Scans hold on to
// a Set so that a concurrent reload never changes the rules they evaluate.
type Set struct {
	entries  []Entry
	byID     map[string]int
	version  string
	loadTime time.Time
}

// NewSet builds a Set from entries. Entries are ordered by rule ID.
func NewSet(entries []Entry) *Set {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rule.ID() < sorted[j].Rule.ID() })

	byID := make(map[string]int, len(sorted))
	for i, e := range sorted {
		byID[e.Rule.ID()] = i
	}

	return &Set{
		entries:  sorted,
		byID:     byID,
		version:  fingerprint(sorted),
		loadTime: time.Now(),
	}
}

// EmptySet returns a Set with no rules.
func EmptySet() *Set {
	return NewSet(nil)
}

// Get returns the rule with the given ID.
func (s *Set) Get(id string) (*rule.Rule, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.entries[i].Rule, true
}

// Entry returns the entry for the given rule ID.
func (s *Set) Entry(id string) (Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Rules returns the rules ordered by ID. The slice is a copy.
func (s *Set) Rules() []*rule.Rule {
	out := make([]*rule.Rule, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Rule
	}
	return out
}

// Entries returns the entries ordered by rule ID. The slice is a copy.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IDs returns the rule IDs in order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Rule.ID()
	}
	return out
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.entries)
}

// CountByOrigin returns the number of rules per origin.
func (s *Set) CountByOrigin() map[string]int {
	counts := map[string]int{SourceBuiltin: 0, SourcePack: 0}
	for _, e := range s.entries {
		counts[e.Origin]++
	}
	return counts
}

// Version is a digest of every rule's ID, condition and declaration. It
// changes whenever the evaluated rule set does.
func (s *Set) Version() string {
	return s.version
}

// LoadTime is when the Set was built.
func (s *Set) LoadTime() time.Time {
	return s.loadTime
}

// Filter returns a Set holding only the rules keep accepts.
func (s *Set) Filter(keep func(Entry) bool) *Set {
	var out []Entry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return NewSet(out)
}

func fingerprint(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		info := e.Rule.Info()
		for _, part := range []string{
			info.ID,
			info.ConditionFingerprint,
			info.Description,
			string(info.Standard),
			info.FailureCode.String(),
		} {
			h.Write([]byte(part))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
