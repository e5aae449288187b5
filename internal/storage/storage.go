// Package storage persists uploaded blobs and returns their public URLs.
package storage

import (
	"context"
	"fmt"

	"eventtix/registrar/internal/config"
)

type Uploader interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// New builds the uploader selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalUploader(cfg.Local.Dir, cfg.Local.BaseURL)
	case "firebase":
		return NewFirebaseUploader(ctx, cfg.Firebase)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
