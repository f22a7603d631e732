package storage

import (
	"context"
	"fmt"
	"time"
)

// Prune deletes runs older than retentionDays together with their entries,
// and returns how many runs were removed.
func (a *Archive) Prune(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := a.now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour).Format(timeLayout)

	res, err := a.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning old runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	return n, nil
}
