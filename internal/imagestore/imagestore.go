// Package imagestore turns uploaded product images into durable URLs.
package imagestore

import (
	"context"
	"path/filepath"
	"strings"

	"shop_backend/internal/model"

	"github.com/google/uuid"
)

// ImageStore persists product images
type ImageStore interface {
	// Save stores the upload and returns the URL clients should use
	Save(ctx context.Context, upload model.ImageUpload) (string, error)
	// Delete removes an image previously returned by Save
	Delete(ctx context.Context, url string) error
}

// objectName returns a collision-free name keeping the upload's extension
func objectName(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
