// Package retention prunes stored scan results.
//
// A Pruner applies two limits from config.RetentionConfig: scans started more
// than Days ago are deleted, then the oldest scans beyond MaxScans. When
// ArchivePath is set, pruned scans are first exported there as JSON.
//
// A Scheduler runs the Pruner on a cron schedule (github.com/robfig/cron/v3):
//
//	pruner := retention.NewPruner(store, &cfg.Retention, logger)
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
