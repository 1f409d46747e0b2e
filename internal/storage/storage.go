package storage

import (
	"context"
	"io"
)

// Driver stores backup archives. Implementations cover local disk and
// S3-compatible object storage.
type Driver interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
