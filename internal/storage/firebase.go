package storage

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"eventtix/registrar/internal/config"
)

type objectBucket interface {
	write(ctx context.Context, key, contentType string, data []byte) error
}

// FirebaseUploader stores blobs in the project's Cloud Storage bucket.
type FirebaseUploader struct {
	bucket     objectBucket
	bucketName string
}

func NewFirebaseUploader(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseUploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("firebase bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase storage: %w", err)
	}
	handle, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}
	return &FirebaseUploader{bucket: gcsBucket{handle: handle}, bucketName: cfg.Bucket}, nil
}

func (u *FirebaseUploader) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if err := u.bucket.write(ctx, key, contentType, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, key), nil
}
