package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps assets on disk under Dir; the router serves Dir at PublicURL.
type LocalStore struct {
	Dir       string
	PublicURL string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir, publicURL string) *LocalStore {
	if publicURL == "" {
		publicURL = "/media"
	}
	return &LocalStore{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}
}

func (s *LocalStore) Save(ctx context.Context, asset Asset) (string, error) {
	key := keyFor(asset)
	dst := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}
	if err := os.WriteFile(dst, asset.Data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return key, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.PublicURL + "/" + key
}
