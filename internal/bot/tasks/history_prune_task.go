package tasks

import (
	"context"
	"fmt"
	"time"
)

const (
	pruneTimeout = 5 * time.Minute
	day          = 24 * time.Hour
)

// newHistoryPruneTask creates the task that deletes conversation turns older
// than database.retention_days. A retention of 0 keeps everything.
func newHistoryPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", HistoryPrune)

	return func(ctx context.Context) error {
		days := deps.Config.Database.RetentionDays
		if days <= 0 {
			log.DebugContext(ctx, "History retention disabled, nothing to prune")
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, pruneTimeout)
		defer cancel()

		cutoff := deps.now().Add(-time.Duration(days) * day)
		deleted, err := deps.Store.PruneMessagesBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune history before %s: %w", cutoff.Format(time.RFC3339), err)
		}

		log.InfoContext(ctx, "Pruned old conversation history", "deleted", deleted, "cutoff", cutoff, "retention_days", days)
		return nil
	}
}
