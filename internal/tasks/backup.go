package tasks

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/storage"
)

// NewDailyBackup archives the backup source directory as tar.gz and
// stores it through the configured storage driver.
func NewDailyBackup(cfg *config.Config) catalog.Task {
	return catalog.Task{
		Name:        "daily_backup",
		Description: "Archive the backup source directory to the configured destination",
		Run: func(ctx context.Context) error {
			store, err := storage.NewFromConfig(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to set up backup destination: %w", err)
			}

			key := fmt.Sprintf("backup-%s.tar.gz", time.Now().Format("20060102-150405"))

			// Local backups may live inside the source tree; never
			// archive the destination into itself.
			skip := ""
			if cfg.StorageType == "local" {
				skip, _ = filepath.Abs(cfg.BackupDir)
			}

			pr, pw := io.Pipe()
			go func() {
				pw.CloseWithError(writeArchive(pw, cfg.BackupSrc, skip))
			}()

			if err := store.Save(ctx, key, pr, "application/gzip"); err != nil {
				pr.CloseWithError(err)
				return fmt.Errorf("failed to store backup %s: %w", key, err)
			}

			return nil
		},
	}
}

// writeArchive streams src as a gzipped tarball into w, skipping the
// directory at skip and anything that is not a regular file.
func writeArchive(w io.Writer, src, skip string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	walkErr := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if skip != "" && abs == skip && info.IsDir() {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if info.IsDir() {
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = rel + "/"
			return tw.WriteHeader(hdr)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})

	if walkErr != nil {
		tw.Close()
		gz.Close()
		return fmt.Errorf("failed to archive %s: %w", src, walkErr)
	}

	if err := tw.Close(); err != nil {
		gz.Close()
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return gz.Close()
}
