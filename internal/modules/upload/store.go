package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ProofBucket holds customers' proof-of-payment screenshots.
	ProofBucket = "payment-proofs"
	// MaxSize caps a single uploaded object.
	MaxSize = 10 << 20
)

var (
	ErrEmpty    = errors.New("upload is empty")
	ErrTooLarge = fmt.Errorf("upload exceeds %d MiB", MaxSize>>20)
	ErrNotImage = errors.New("upload is not an image")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (string, error)
}

// DiskStore writes objects under root/bucket and serves them from
// baseURL/uploads/bucket.
type DiskStore struct {
	root    string
	bucket  string
	baseURL string
	log     *zap.Logger
	now     func() time.Time
}

// NewDiskStore creates the bucket directory if needed.
func NewDiskStore(root, bucket, baseURL string, log *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(root, bucket), 0o755); err != nil {
		return nil, fmt.Errorf("create upload bucket: %w", err)
	}
	return &DiskStore{root: root, bucket: bucket, baseURL: baseURL, log: log, now: time.Now}, nil
}

// Upload accepts image data up to MaxSize. The object name is derived from
// the upload time and a random id; the caller's file name is never used.
func (s *DiskStore) Upload(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return "", ErrEmpty
	case len(data) > MaxSize:
		return "", ErrTooLarge
	}
	ext, ok := extensions[http.DetectContentType(data)]
	if !ok {
		return "", ErrNotImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.New().String(), ext)
	path := filepath.Join(s.root, s.bucket, name)
	if err := writeFile(path, data); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	s.log.Info("upload stored", zap.String("bucket", s.bucket), zap.String("name", name), zap.Int("bytes", len(data)))
	return s.baseURL + "/uploads/" + s.bucket + "/" + name, nil
}

// writeFile publishes the object atomically so a reader never sees a
// partial image.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
