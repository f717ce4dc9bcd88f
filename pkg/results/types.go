package results

import (
	"context"
	"fmt"
	"time"

	"a11y-hq/lumen/pkg/scan"
)

// Sort fields accepted by Query.SortBy.
const (
	SortStartedAt = "started_at"
	SortDuration  = "duration"
	SortFailures  = "failures"
	SortElements  = "elements"
)

// Sort orders accepted by Query.SortOrder.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Query filters stored scans.
type Query struct {
	// Time range over Result.StartedAt, both ends inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Target string `json:"target,omitempty"`
	Status string `json:"status,omitempty"`

	// RuleID keeps scans with at least one finding for the rule.
	RuleID string `json:"rule_id,omitempty"`

	// MinFailures keeps scans with at least this many Error or Open verdicts.
	MinFailures *int `json:"min_failures,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage persists scan results.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a result. Storing an existing ID replaces it.
	Store(ctx context.Context, result *scan.Result) error

	// Get returns the result with its findings, or ErrNotFound.
	Get(ctx context.Context, id string) (*scan.Result, error)

	// List returns matching results without their findings.
	List(ctx context.Context, query *Query) ([]*scan.Result, error)

	// Count returns the number of matching results, ignoring pagination.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes the given results and reports how many existed.
	Delete(ctx context.Context, ids ...string) (int64, error)

	// DeleteBefore removes results started before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Validate reports whether r can be stored. Every finding must carry a valid
// evaluation code.
func Validate(r *scan.Result) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", ErrInvalidResult)
	}
	for i, f := range r.Findings {
		if !f.Code.Valid() {
			return fmt.Errorf("%w: finding %d (rule %s, element %s) has invalid code %d",
				ErrInvalidResult, i, f.RuleID, f.ElementID, int(f.Code))
		}
	}
	return nil
}
