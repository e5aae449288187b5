package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

type gcsBucket struct {
	handle *gcs.BucketHandle
}

func (b gcsBucket) write(ctx context.Context, key, contentType string, data []byte) error {
	w := b.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", key, err)
	}
	return nil
}
