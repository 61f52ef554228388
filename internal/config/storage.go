package config

import (
	"context"

	"waste_tracker/internal/storage"
)

// Photos is where collection photos are written.
var Photos storage.Store

// InitStorage builds the photo store selected by STORAGE_DRIVER.
func InitStorage(ctx context.Context, s Settings) error {
	if s.Storage.Driver == "s3" {
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       s.Storage.Bucket,
			Region:       s.Storage.Region,
			Endpoint:     s.Storage.Endpoint,
			AccessKey:    s.Storage.AccessKey,
			SecretKey:    s.Storage.SecretKey,
			UsePathStyle: s.Storage.UsePathStyle,
			PublicURL:    s.Storage.S3PublicURL,
		})
		if err != nil {
			return err
		}
		Photos = store
		return nil
	}

	Photos = storage.NewLocalStore(s.Storage.LocalDir, s.Storage.PublicURL)
	return nil
}
