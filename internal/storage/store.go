// Package storage persists photo assets attached to waste collections and
// decodes the two shapes they arrive in: multipart uploads and inline
// base64 data URLs.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const photoPrefix = "photos/"

var (
	ErrMalformedDataURL = errors.New("malformed photo data")
	ErrUnsupportedType  = errors.New("unsupported photo type")
	ErrTooLarge         = errors.New("photo is too large")
	ErrEmptyKey         = errors.New("storage key is required")
)

// Asset is a decoded photo ready to be written.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store writes and removes photo assets. Keys returned by Save are what gets
// stored on the collection record.
type Store interface {
	Save(ctx context.Context, asset Asset) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewAssetName returns a fresh unique file name carrying ext.
func NewAssetName(ext string) string {
	return uuid.NewString() + "." + ext
}

func keyFor(asset Asset) string {
	return photoPrefix + asset.Name
}
