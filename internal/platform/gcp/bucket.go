package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// ErrObjectNotFound is returned by Delete when the key does not exist.
var ErrObjectNotFound = errors.New("gcp: object not found")

// ImageBucket stores publicly served images in a single GCS bucket.
type ImageBucket struct {
	log       *logger.Logger
	client    *storage.Client
	cfg       ObjectStorageConfig
	bucket    string
	cdnDomain string
}

func NewImageBucket(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig, bucket, cdnDomain string) (*ImageBucket, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing env var IMAGE_GCS_BUCKET_NAME")
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "ImageBucket")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
		"bucket", bucket,
	)
	return &ImageBucket{
		log:       serviceLog,
		client:    client,
		cfg:       cfg,
		bucket:    bucket,
		cdnDomain: strings.TrimSpace(cdnDomain),
	}, nil
}

func newStorageClient(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptions(cfg.Credentials)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client only honors the emulator through the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(cfg.Mode)}
	}
}

// Put writes the object and returns its public URL.
func (b *ImageBucket) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return b.PublicURL(key), nil
}

func (b *ImageBucket) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := b.client.Bucket(b.bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, b.bucket, err)
	}
	return nil
}

func (b *ImageBucket) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case b.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", b.cdnDomain, key)
	case b.cfg.IsEmulatorMode() && b.cfg.PublicBaseURL != "":
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", b.cfg.PublicBaseURL, url.PathEscape(b.bucket), url.PathEscape(key))
	case b.cfg.PublicBaseURL != "":
		return fmt.Sprintf("%s/%s/%s", b.cfg.PublicBaseURL, b.bucket, key)
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, key)
	}
}

// KeyFromURL reverses PublicURL. ok is false for URLs that do not point into this bucket.
func (b *ImageBucket) KeyFromURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	if b.cfg.IsEmulatorMode() && b.cfg.PublicBaseURL != "" {
		prefix := fmt.Sprintf("/storage/v1/b/%s/o/", b.bucket)
		if strings.HasPrefix(u.Path, prefix) {
			return nonEmpty(strings.TrimPrefix(u.Path, prefix))
		}
	}
	if b.cdnDomain != "" && u.Host == b.cdnDomain {
		return nonEmpty(strings.TrimPrefix(u.Path, "/"))
	}
	prefix := "/" + b.bucket + "/"
	if strings.HasPrefix(u.Path, prefix) {
		return nonEmpty(strings.TrimPrefix(u.Path, prefix))
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}

func (b *ImageBucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}
