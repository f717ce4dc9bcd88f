package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/scan"
)

const backendMemory = "memory"

// MemoryStorage keeps results in a map. Results are lost on restart.
type MemoryStorage struct {
	results map[string]*scan.Result
	mu      sync.RWMutex
}

var _ results.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		results: make(map[string]*scan.Result),
	}
}

// Store implements results.Storage.
func (s *MemoryStorage) Store(ctx context.Context, result *scan.Result) error {
	if err := results.Validate(result); err != nil {
		return results.NewStorageError(backendMemory, "store", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[result.ID] = cloneResult(result, true)
	return nil
}

// Get implements results.Storage.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*scan.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[id]
	if !ok {
		return nil, results.ErrNotFound
	}
	return cloneResult(r, true), nil
}

// List implements results.Storage.
func (s *MemoryStorage) List(ctx context.Context, query *results.Query) ([]*scan.Result, error) {
	q, err := results.Normalized(query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*scan.Result, 0)
	for _, r := range s.results {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sortResults(matched, q.SortBy, q.SortOrder)

	start := q.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*scan.Result, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, cloneResult(r, false))
	}
	return out, nil
}

// Count implements results.Storage.
func (s *MemoryStorage) Count(ctx context.Context, query *results.Query) (int64, error) {
	q, err := results.Normalized(query)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, r := range s.results {
		if q.Matches(r) {
			count++
		}
	}
	return count, nil
}

// Delete implements results.Storage.
func (s *MemoryStorage) Delete(ctx context.Context, ids ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := s.results[id]; ok {
			delete(s.results, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteBefore implements results.Storage.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, r := range s.results {
		if r.StartedAt.Before(cutoff) {
			delete(s.results, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping implements results.Storage.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements results.Storage.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make(map[string]*scan.Result)
	return nil
}

// Size returns the number of stored results.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.results)
}

func cloneResult(r *scan.Result, withFindings bool) *scan.Result {
	out := *r
	out.Summary.Counts = make(map[string]int, len(r.Summary.Counts))
	for k, v := range r.Summary.Counts {
		out.Summary.Counts[k] = v
	}
	out.Findings = nil
	if withFindings && r.Findings != nil {
		out.Findings = append([]scan.Finding(nil), r.Findings...)
	}
	return &out
}

// sortResults orders rs by field, breaking ties by ID so that pagination is
// stable.
func sortResults(rs []*scan.Result, field, order string) {
	key := func(r *scan.Result) int64 {
		switch field {
		case results.SortDuration:
			return int64(r.Duration)
		case results.SortFailures:
			return int64(r.Summary.Failures())
		case results.SortElements:
			return int64(r.Summary.Elements)
		default:
			return r.StartedAt.UnixNano()
		}
	}
	desc := order == results.SortDesc
	sort.Slice(rs, func(i, j int) bool {
		ki, kj := key(rs[i]), key(rs[j])
		if ki != kj {
			if desc {
				return ki > kj
			}
			return ki < kj
		}
		if desc {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].ID < rs[j].ID
	})
}
