package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventtix/registrar/internal/config"
)

func TestLocalUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), []byte("png"), "qr-codes/EVT25-000001.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/qr-codes/EVT25-000001.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "qr-codes", "EVT25-000001.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)
}

func TestLocalUploader_StaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(filepath.Join(dir, "root"), "/uploads")
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), []byte("x"), "../../escape.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.png", url)
	_, err = os.Stat(filepath.Join(dir, "root", "escape.png"))
	assert.NoError(t, err)
}

func TestLocalUploader_CancelledContext(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = u.Upload(ctx, []byte("x"), "a.png", "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeBucket struct {
	keys []string
	err  error
}

func (f *fakeBucket) write(_ context.Context, key, _ string, _ []byte) error {
	f.keys = append(f.keys, key)
	return f.err
}

func TestFirebaseUploader_URL(t *testing.T) {
	b := &fakeBucket{}
	u := &FirebaseUploader{bucket: b, bucketName: "event-bucket"}

	url, err := u.Upload(context.Background(), []byte("x"), "payments/abc.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/event-bucket/payments/abc.png", url)
	assert.Equal(t, []string{"payments/abc.png"}, b.keys)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
}
