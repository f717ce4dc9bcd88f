package retention

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/results/export"
	"a11y-hq/lumen/pkg/scan"
	"a11y-hq/lumen/pkg/telemetry/logging"
)

// Pruner enforces retention policies on stored scan results.
type Pruner struct {
	storage   results.Storage
	config    config.RetentionConfig
	logger    *logging.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner. A nil cfg uses the defaults.
func NewPruner(storage results.Storage, cfg *config.RetentionConfig, logger *logging.Logger) *Pruner {
	c := config.Default().Retention
	if cfg != nil {
		c = *cfg
	}
	if logger == nil {
		logger = logging.Nop()
	}

	p := &Pruner{
		storage: storage,
		config:  c,
		logger:  logger.WithComponent("results.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes scans older than the retention period, then the oldest
// scans beyond MaxScans. It returns the total number of scans deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Debug("pruned scans by age",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
		)
	}

	if p.config.MaxScans > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Debug("pruned scans by count",
			"deleted_count", deleted,
			"max_scans", p.config.MaxScans,
		)
	}

	if totalDeleted > 0 {
		p.logger.Info("scan result pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.Days,
			"max_scans", p.config.MaxScans,
		)
	}

	return totalDeleted, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)

	if p.config.ArchivePath != "" {
		end := cutoff.Add(-time.Nanosecond)
		ids, err := p.collect(ctx, &results.Query{EndTime: &end, SortOrder: results.SortAsc}, -1)
		if err != nil {
			return 0, results.NewRetentionError(p.config.Days, err)
		}
		if err := p.archive(ctx, "age", ids); err != nil {
			return 0, results.NewRetentionError(p.config.Days, err)
		}
	}

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, results.NewRetentionError(p.config.Days, err)
	}
	return deleted, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	if count <= p.config.MaxScans {
		return 0, nil
	}

	toDelete := int(count - p.config.MaxScans)
	p.logger.Info("scan count exceeds limit, pruning oldest",
		"current_count", count,
		"max_scans", p.config.MaxScans,
		"to_delete", toDelete,
	)

	ids, err := p.collect(ctx, &results.Query{SortOrder: results.SortAsc}, toDelete)
	if err != nil {
		return 0, err
	}
	if err := p.archive(ctx, "count", ids); err != nil {
		return 0, fmt.Errorf("archive failed: %w", err)
	}

	deleted, err := p.storage.Delete(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return deleted, nil
}

// collect pages through q and returns up to max IDs (all when max < 0).
func (p *Pruner) collect(ctx context.Context, q *results.Query, max int) ([]string, error) {
	var ids []string
	if max == 0 {
		return ids, nil
	}
	page := *q
	page.Limit = results.MaxLimit
	for {
		batch, err := p.storage.List(ctx, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to list scans: %w", err)
		}
		for _, r := range batch {
			ids = append(ids, r.ID)
			if len(ids) == max {
				return ids, nil
			}
		}
		if len(batch) < page.Limit {
			return ids, nil
		}
		page.Offset += len(batch)
	}
}

// archive writes the full results for ids to a JSON file under ArchivePath.
func (p *Pruner) archive(ctx context.Context, reason string, ids []string) error {
	if p.config.ArchivePath == "" || len(ids) == 0 {
		return nil
	}

	rs := make([]*scan.Result, 0, len(ids))
	for _, id := range ids {
		r, err := p.storage.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read scan %s for archiving: %w", id, err)
		}
		rs = append(rs, r)
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("scans-%s-%s.json", reason, p.now().UTC().Format("2006-01-02-150405"))
	path := filepath.Join(p.config.ArchivePath, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).Export(ctx, rs, f); err != nil {
		return fmt.Errorf("failed to export scans to archive: %w", err)
	}

	p.logger.Info("scan results archived",
		"archive_file", path,
		"scan_count", len(rs),
	)
	return nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
