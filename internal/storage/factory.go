package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nixlim/chatprint/internal/config"
)

// Open returns the archive configured by cfg, or nil when archiving is
// disabled. Runs past their retention are pruned on open.
func Open(ctx context.Context, cfg config.StorageConfig) (*Archive, error) {
	if cfg.DBPath == "" {
		return nil, nil
	}

	a, err := NewArchive(expandTilde(cfg.DBPath))
	if err != nil {
		return nil, err
	}
	if _, err := a.Prune(ctx, cfg.RetentionDays); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("archive maintenance: %w", err)
	}
	return a, nil
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
