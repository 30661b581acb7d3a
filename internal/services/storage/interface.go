package storage

import (
	"context"
	"io"
)

// StorageInterface is the object store used to archive finished MP3 files
type StorageInterface interface {
	BucketName() string
	UploadWithMetadata(ctx context.Context, key string, data io.Reader, contentType string, metadata map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
}
