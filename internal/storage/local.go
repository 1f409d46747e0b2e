package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalDriver stores archives as plain files in a directory
type LocalDriver struct {
	BaseDir string
}

// NewLocalDriver creates the backup directory if needed
func NewLocalDriver(baseDir string) (*LocalDriver, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &LocalDriver{BaseDir: baseDir}, nil
}

func (d *LocalDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	fullPath := filepath.Join(d.BaseDir, key)

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	// A close failure means the data may not have hit the disk; the
	// backup must not be reported as saved.
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to finish backup file: %w", err)
	}

	return nil
}

func (d *LocalDriver) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.BaseDir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	return f, nil
}

func (d *LocalDriver) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(d.BaseDir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
