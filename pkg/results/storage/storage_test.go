package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/scan"
)

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// backends returns a fresh instance of every backend.
func backends(t *testing.T) map[string]results.Storage {
	t.Helper()
	out := map[string]results.Storage{"memory": NewMemoryStorage()}
	for _, driver := range []string{DriverCGo, DriverPureGo} {
		s, err := NewSQLiteStorage(&config.SQLiteConfig{
			Path:         filepath.Join(t.TempDir(), "results.db"),
			Driver:       driver,
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			WALMode:      true,
			BusyTimeout:  5 * time.Second,
		}, nil)
		if err != nil {
			t.Fatalf("NewSQLiteStorage(%s) error = %v", driver, err)
		}
		out["sqlite/"+driver] = s
	}
	for _, s := range out {
		t.Cleanup(func() { s.Close() })
	}
	return out
}

// makeResult builds a scan started offset minutes after base with the given
// number of Error findings.
func makeResult(id string, offset int, errs int, target string) *scan.Result {
	started := base.Add(time.Duration(offset) * time.Minute)
	r := &scan.Result{
		ID:             id,
		Target:         target,
		Status:         scan.StatusCompleted,
		StartedAt:      started,
		FinishedAt:     started.Add(time.Duration(offset+1) * time.Millisecond),
		Duration:       time.Duration(offset+1) * time.Millisecond,
		CatalogVersion: "abc123",
		Summary: scan.Summary{
			Elements:    10 + offset,
			Rules:       2,
			Evaluations: 2 * (10 + offset),
			Counts: map[string]int{
				rule.Pass.String():           2*(10+offset) - errs,
				rule.Error.String():          errs,
				rule.Open.String():           0,
				rule.NotApplicable.String():  0,
				rule.ExecutionError.String(): 0,
			},
		},
	}
	for i := 0; i < errs; i++ {
		r.Findings = append(r.Findings, scan.Finding{
			RuleID:      "NameNotNull",
			ElementID:   fmt.Sprintf("0.%d", i),
			ControlType: "Button",
			Code:        rule.Error,
			Description: "The Name property must not be null",
			Standard:    "WCAG 4.1.2",
		})
	}
	r.Findings = append(r.Findings, scan.Finding{
		RuleID:      "ButtonInvokeAndTogglePatterns",
		ElementID:   "0",
		ControlType: "Window",
		ElementName: "Main",
		Code:        rule.ExecutionError,
		Error:       "rule ButtonInvokeAndTogglePatterns on element 0: execution failed: boom",
	})
	return r
}

func TestStorage_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := makeResult("scan-1", 0, 2, "app.yaml")
			if err := s.Store(ctx, want); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			got, err := s.Get(ctx, "scan-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !got.StartedAt.Equal(want.StartedAt) || !got.FinishedAt.Equal(want.FinishedAt) {
				t.Errorf("times = %v/%v, want %v/%v", got.StartedAt, got.FinishedAt, want.StartedAt, want.FinishedAt)
			}
			got.StartedAt, got.FinishedAt = want.StartedAt, want.FinishedAt
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Get() = %+v\nwant %+v", got, want)
			}

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, results.ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStorage_StoreReplaces(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Store(ctx, makeResult("scan-1", 0, 3, "a")); err != nil {
				t.Fatal(err)
			}
			if err := s.Store(ctx, makeResult("scan-1", 0, 1, "b")); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, "scan-1")
			if err != nil {
				t.Fatal(err)
			}
			if got.Target != "b" || len(got.Findings) != 2 {
				t.Errorf("replaced result = target %q with %d findings", got.Target, len(got.Findings))
			}
			if n, _ := s.Count(ctx, nil); n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}
		})
	}
}

func TestStorage_RejectsInvalidCodes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		code rule.EvaluationCode
	}{
		{"zero code", 0},
		{"out of range", rule.EvaluationCode(42)},
	}

	for name, s := range backends(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				r := makeResult("scan-bad", 0, 1, "app.yaml")
				r.Findings[0].Code = tt.code

				err := s.Store(ctx, r)
				if !errors.Is(err, results.ErrInvalidResult) {
					t.Fatalf("Store() error = %v, want ErrInvalidResult", err)
				}
				backend := backendSQLite
				if name == backendMemory {
					backend = backendMemory
				}
				var storageErr *results.StorageError
				if !errors.As(err, &storageErr) || storageErr.Backend != backend {
					t.Errorf("Store() error = %v, want StorageError from %s", err, backend)
				}
				if _, err := s.Get(ctx, "scan-bad"); !errors.Is(err, results.ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			})
		}
	}

	var nilResult *scan.Result
	if err := results.Validate(nilResult); !errors.Is(err, results.ErrInvalidResult) {
		t.Errorf("Validate(nil) error = %v, want ErrInvalidResult", err)
	}
}

func TestStorage_List(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				target := "a.yaml"
				if i%2 == 1 {
					target = "b.yaml"
				}
				if err := s.Store(ctx, makeResult(fmt.Sprintf("scan-%d", i), i, i, target)); err != nil {
					t.Fatal(err)
				}
			}
			cancelled := makeResult("scan-x", 10, 0, "a.yaml")
			cancelled.Status = scan.StatusCancelled
			if err := s.Store(ctx, cancelled); err != nil {
				t.Fatal(err)
			}

			two := 2
			from, to := base.Add(time.Minute), base.Add(3*time.Minute)
			tests := []struct {
				name  string
				query *results.Query
				want  []string
			}{
				{"default newest first", nil, []string{"scan-x", "scan-4", "scan-3", "scan-2", "scan-1", "scan-0"}},
				{"oldest first", &results.Query{SortOrder: results.SortAsc, Limit: 2}, []string{"scan-0", "scan-1"}},
				{"page", &results.Query{SortOrder: results.SortAsc, Limit: 2, Offset: 2}, []string{"scan-2", "scan-3"}},
				{"past the end", &results.Query{Offset: 10}, []string{}},
				{"target", &results.Query{Target: "b.yaml"}, []string{"scan-3", "scan-1"}},
				{"status", &results.Query{Status: scan.StatusCancelled}, []string{"scan-x"}},
				{"time range", &results.Query{StartTime: &from, EndTime: &to, SortOrder: results.SortAsc}, []string{"scan-1", "scan-2", "scan-3"}},
				{"min failures", &results.Query{MinFailures: &two, SortBy: results.SortFailures}, []string{"scan-4", "scan-3", "scan-2"}},
				{"rule", &results.Query{RuleID: "NameNotNull", SortBy: results.SortElements, SortOrder: results.SortAsc}, []string{"scan-1", "scan-2", "scan-3", "scan-4"}},
				{"duration", &results.Query{SortBy: results.SortDuration, Limit: 1}, []string{"scan-x"}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := s.List(ctx, tt.query)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					ids := []string{}
					for _, r := range got {
						ids = append(ids, r.ID)
						if r.Findings != nil {
							t.Errorf("List() returned findings for %s", r.ID)
						}
					}
					if !reflect.DeepEqual(ids, tt.want) {
						t.Errorf("List() = %v, want %v", ids, tt.want)
					}

					if tt.query == nil || tt.query.Limit != 0 || tt.query.Offset != 0 {
						return
					}
					n, err := s.Count(ctx, tt.query)
					if err != nil || n != int64(len(tt.want)) {
						t.Errorf("Count() = %d, %v; want %d", n, err, len(tt.want))
					}
				})
			}

			var qe *results.QueryError
			if _, err := s.List(ctx, &results.Query{SortBy: "id"}); !errors.As(err, &qe) {
				t.Errorf("List(bad sort) error = %v, want *QueryError", err)
			}
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 4; i++ {
				if err := s.Store(ctx, makeResult(fmt.Sprintf("scan-%d", i), i, 1, "t")); err != nil {
					t.Fatal(err)
				}
			}

			n, err := s.DeleteBefore(ctx, base.Add(2*time.Minute))
			if err != nil || n != 2 {
				t.Fatalf("DeleteBefore() = %d, %v; want 2", n, err)
			}

			n, err = s.Delete(ctx, "scan-2", "missing")
			if err != nil || n != 1 {
				t.Fatalf("Delete() = %d, %v; want 1", n, err)
			}

			if n, _ := s.Delete(ctx); n != 0 {
				t.Errorf("Delete() with no IDs = %d", n)
			}

			left, err := s.List(ctx, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(left) != 1 || left[0].ID != "scan-3" {
				t.Errorf("remaining = %v", left)
			}
			if got, err := s.List(ctx, &results.Query{RuleID: "NameNotNull"}); err != nil || len(got) != 1 {
				t.Errorf("findings of deleted scans still match: %d, %v", len(got), err)
			}
			if err := s.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	ctx := context.Background()
	cfg := &config.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "nested", "results.db"),
		Driver:      DriverPureGo,
		WALMode:     true,
		BusyTimeout: time.Second,
	}

	s, err := NewSQLiteStorage(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	if err := s.Store(ctx, makeResult("scan-1", 0, 1, "t")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewSQLiteStorage(cfg, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, "scan-1"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    string
		wantErr bool
	}{
		{"memory", config.StorageConfig{Backend: "memory"}, "*storage.MemoryStorage", false},
		{"sqlite", config.StorageConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "x.db"), Driver: DriverPureGo}}, "*storage.SQLiteStorage", false},
		{"bad driver", config.StorageConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "y.db"), Driver: "postgres"}}, "", true},
		{"unknown", config.StorageConfig{Backend: "s3"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&tt.cfg, nil)
			if tt.wantErr {
				var se *results.StorageError
				if !errors.As(err, &se) {
					t.Fatalf("New() error = %v, want *StorageError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer s.Close()
			if got := fmt.Sprintf("%T", s); got != tt.want {
				t.Errorf("New() = %s, want %s", got, tt.want)
			}
		})
	}
}
