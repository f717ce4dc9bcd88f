package scan

import (
	"time"

	"a11y-hq/lumen/pkg/rule"
)

// Scan statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Fail-on thresholds.
const (
	FailOnError = "error"
	FailOnOpen  = "open"
	FailOnNever = "never"
)

// Finding is the verdict of one rule on one element.
type Finding struct {
	RuleID      string              `json:"rule_id"`
	ElementID   string              `json:"element_id"`
	ControlType string              `json:"control_type"`
	ElementName string              `json:"element_name,omitempty"`
	Code        rule.EvaluationCode `json:"code"`
	Description string              `json:"description,omitempty"`
	HowToFix    string              `json:"how_to_fix,omitempty"`
	Standard    string              `json:"standard,omitempty"`

	// Error describes the failure behind an ExecutionError verdict.
	Error string `json:"error,omitempty"`
}

// Summary counts verdicts.
type Summary struct {
	Elements    int `json:"elements"`
	Rules       int `json:"rules"`
	Evaluations int `json:"evaluations"`

	// Counts holds the number of verdicts per code name.
	Counts map[string]int `json:"counts"`
}

func newSummary() Summary {
	counts := make(map[string]int, len(rule.Codes()))
	for _, c := range rule.Codes() {
		counts[c.String()] = 0
	}
	return Summary{Counts: counts}
}

// Count returns the number of verdicts with the given code.
func (s Summary) Count(code rule.EvaluationCode) int {
	return s.Counts[code.String()]
}

// Failures returns the number of Error and Open verdicts.
func (s Summary) Failures() int {
	return s.Count(rule.Error) + s.Count(rule.Open)
}

// Failed reports whether the verdicts cross the failOn threshold.
func (s Summary) Failed(failOn string) bool {
	switch failOn {
	case FailOnNever:
		return false
	case FailOnOpen:
		return s.Failures() > 0
	default:
		return s.Count(rule.Error) > 0
	}
}

// Result is a completed scan.
type Result struct {
	ID             string        `json:"id"`
	Target         string        `json:"target,omitempty"`
	Status         string        `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	Duration       time.Duration `json:"duration_ns"`
	CatalogVersion string        `json:"catalog_version"`
	Summary        Summary       `json:"summary"`
	Findings       []Finding     `json:"findings"`
}

// Failures returns the findings with Error or Open verdicts.
func (r *Result) Failures() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Code.IsFailure() {
			out = append(out, f)
		}
	}
	return out
}

// Options tune a single run. Zero fields take the runner's configuration.
type Options struct {
	// Target names what was scanned, such as a snapshot path.
	Target string

	// RuleIDs restricts the run to these rules.
	RuleIDs []string

	Workers              int
	PreFilter            *bool
	IncludeNotApplicable *bool
	Timeout              time.Duration
	MaxElements          int
}
