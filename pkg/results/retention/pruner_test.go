package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results/storage"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/scan"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// seed stores one scan per age in days.
func seed(t *testing.T, store *storage.MemoryStorage, ages ...int) {
	t.Helper()
	for _, age := range ages {
		r := &scan.Result{
			ID:        fmt.Sprintf("scan-%02d", age),
			Status:    scan.StatusCompleted,
			StartedAt: now.AddDate(0, 0, -age),
			Summary:   scan.Summary{Counts: map[string]int{}},
			Findings:  []scan.Finding{{RuleID: "NameNotNull", ElementID: "0", Code: rule.Error}},
		}
		if err := store.Store(context.Background(), r); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func remaining(t *testing.T, store *storage.MemoryStorage) []string {
	t.Helper()
	rs, err := store.List(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

func newTestPruner(store *storage.MemoryStorage, cfg config.RetentionConfig) *Pruner {
	p := NewPruner(store, &cfg, nil)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.RetentionConfig
		wantDeleted int64
		wantLeft    []string
	}{
		{"by age", config.RetentionConfig{Days: 7}, 2, []string{"scan-01", "scan-03", "scan-05"}},
		{"by count", config.RetentionConfig{MaxScans: 2}, 3, []string{"scan-01", "scan-03"}},
		{"age then count", config.RetentionConfig{Days: 7, MaxScans: 1}, 4, []string{"scan-01"}},
		{"keep forever", config.RetentionConfig{}, 0, []string{"scan-01", "scan-03", "scan-05", "scan-08", "scan-10"}},
		{"count within limit", config.RetentionConfig{MaxScans: 10}, 0, []string{"scan-01", "scan-03", "scan-05", "scan-08", "scan-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			seed(t, store, 1, 3, 5, 8, 10)

			deleted, err := newTestPruner(store, tt.cfg).Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}
			if got := remaining(t, store); fmt.Sprint(got) != fmt.Sprint(tt.wantLeft) {
				t.Errorf("remaining = %v, want %v", got, tt.wantLeft)
			}
		})
	}
}

func TestPruner_Archive(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, 1, 8, 10)
	dir := filepath.Join(t.TempDir(), "archive")

	p := newTestPruner(store, config.RetentionConfig{Days: 7, ArchivePath: dir})
	if _, err := p.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "scans-age-*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("archive files = %v, %v", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	var archived []scan.Result
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("archive is not a JSON array: %v", err)
	}
	if len(archived) != 2 || archived[0].ID != "scan-10" || len(archived[0].Findings) != 1 {
		t.Errorf("archived = %+v", archived)
	}
}
