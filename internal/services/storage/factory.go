package storage

import (
	"fmt"
	"path"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

// NewStorage creates S3 storage
func NewStorage(cfg *config.S3Config) (StorageInterface, error) {
	utils.GetLogger().Infof("Creating S3 archive storage (bucket: %s, endpoint: %s)", cfg.BucketName, cfg.EndpointURL)
	storage, err := NewS3Storage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 storage: %w", err)
	}

	return storage, nil
}

// ArchiveKey returns the object key for a converted file, e.g. mp3/dQw4w9WgXcQ/Title.mp3
func ArchiveKey(prefix, videoID, filename string) string {
	return path.Join(prefix, videoID, filename)
}
