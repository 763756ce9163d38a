package imagestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"shop_backend/internal/model"
)

// PublicPath is where the router serves locally stored images
const PublicPath = "/images"

// LocalStore writes images into a directory served by the API itself
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the directory if needed. baseURL is prefixed to returned URLs
// and may be empty for host-relative links.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory images are written to
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, upload model.ImageUpload) (string, error) {
	name := objectName(upload.Filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return s.baseURL + path.Join(PublicPath, name), nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	prefix := s.baseURL + PublicPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("image %s is not managed by this store", url)
	}
	name := filepath.Base(strings.TrimPrefix(url, prefix))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
