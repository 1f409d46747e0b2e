package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/system"
)

// NewGenerateReport samples host metrics and writes a timestamped JSON
// report into the report directory.
func NewGenerateReport(cfg *config.Config) catalog.Task {
	collector := system.NewCollector()

	return catalog.Task{
		Name:        "generate_report",
		Description: "Write a host metrics report to the report directory",
		Run: func(ctx context.Context) error {
			snap, err := collector.Snapshot()
			if err != nil {
				return fmt.Errorf("failed to collect metrics: %w", err)
			}

			if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}

			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}

			name := fmt.Sprintf("report-%s.json", snap.Timestamp.Format("20060102-150405"))
			path := filepath.Join(cfg.ReportDir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			return nil
		},
	}
}

// latestReport returns the newest report file in dir, or "" if none
func latestReport(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, e.Name())
			latestMod = info.ModTime()
		}
	}
	return latest
}
