package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/runlog"
)

// NewCleanupLogs prunes files older than the retention window from the
// report, backup, and log directories. The run log itself is never
// pruned; it is the append-only history.
func NewCleanupLogs(cfg *config.Config) catalog.Task {
	return catalog.Task{
		Name:        "cleanup_logs",
		Description: "Prune files older than the retention window",
		Run: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)

			for _, dir := range []string{cfg.ReportDir, cfg.BackupDir, cfg.LogDir} {
				if err := pruneDir(dir, cutoff); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// pruneDir removes regular files in dir last modified before cutoff.
// A missing directory is fine; there is nothing to prune.
func pruneDir(dir string, cutoff time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || e.Name() == runlog.FileName {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to prune %s: %w", path, err)
		}
	}

	return nil
}
