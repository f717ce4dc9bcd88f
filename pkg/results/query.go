package results

import (
	"fmt"

	"a11y-hq/lumen/pkg/scan"
)

const (
	// DefaultLimit is the number of results returned when Limit is 0.
	DefaultLimit = 100

	// MaxLimit caps Limit.
	MaxLimit = 10000
)

var validSortFields = map[string]bool{
	SortStartedAt: true,
	SortDuration:  true,
	SortFailures:  true,
	SortElements:  true,
}

var validStatuses = map[string]bool{
	scan.StatusCompleted: true,
	scan.StatusFailed:    true,
	scan.StatusCancelled: true,
}

// Validate reports the first invalid parameter of q.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortBy != "" && !validSortFields[q.SortBy] {
		return NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && q.SortOrder != SortAsc && q.SortOrder != SortDesc {
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}
	if q.Status != "" && !validStatuses[q.Status] {
		return NewQueryError(q, fmt.Errorf("invalid status: %s", q.Status))
	}
	if q.MinFailures != nil && *q.MinFailures < 0 {
		return NewQueryError(q, fmt.Errorf("min_failures must be >= 0, got %d", *q.MinFailures))
	}
	return nil
}

// ApplyDefaults fills the limit and sort of q.
func (q *Query) ApplyDefaults() {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = SortStartedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = SortDesc
	}
}

// Normalized returns a validated copy of q with defaults applied. A nil
// query selects everything.
func Normalized(q *Query) (*Query, error) {
	var out Query
	if q != nil {
		out = *q
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.ApplyDefaults()
	return &out, nil
}

// Matches reports whether r passes the filters of q. Pagination and sorting
// are ignored.
func (q *Query) Matches(r *scan.Result) bool {
	if q.StartTime != nil && r.StartedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.StartedAt.After(*q.EndTime) {
		return false
	}
	if q.Target != "" && r.Target != q.Target {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.MinFailures != nil && r.Summary.Failures() < *q.MinFailures {
		return false
	}
	if q.RuleID != "" {
		found := false
		for _, f := range r.Findings {
			if f.RuleID == q.RuleID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
