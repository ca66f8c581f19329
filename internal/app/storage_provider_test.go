package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/graphadmin-backend/internal/platform/gcp"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode, Value: "bad-mode"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost, Value: "fake-gcs:4443"}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"invalid public base", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidPublicBase, Value: "cdn"}, StorageProviderBootstrapErrorInvalidPublicBaseURL},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.err)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.name, err)
		}
		if got.Code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.name, tc.want, got.Code)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: cause not preserved", tc.name)
		}
	}
}

func TestResolveImageBucketInvalidMode(t *testing.T) {
	_, err := resolveImageBucket(context.Background(), logger.NewNop(), Config{
		ObjectStorageMode: "invalid",
		ImageBucket:       "images",
	})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorInvalidMode, got, err)
	}
}

func TestResolveImageBucketMissingEmulatorHost(t *testing.T) {
	_, err := resolveImageBucket(context.Background(), logger.NewNop(), Config{
		ObjectStorageMode: string(gcp.ObjectStorageModeGCSEmulator),
		ImageBucket:       "images",
	})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorMissingEmulatorHost, got, err)
	}
}

func TestResolveImageBucketEmulatorFallback(t *testing.T) {
	orig := newImageBucket
	t.Cleanup(func() { newImageBucket = orig })

	var captured gcp.ObjectStorageConfig
	var capturedBucket string
	newImageBucket = func(_ context.Context, _ *logger.Logger, cfg gcp.ObjectStorageConfig, bucket, _ string) (*gcp.ImageBucket, error) {
		captured = cfg
		capturedBucket = bucket
		return &gcp.ImageBucket{}, nil
	}

	got, err := resolveImageBucket(context.Background(), logger.NewNop(), Config{
		StorageEmulatorHost: "http://fake-gcs:4443",
		ImageBucket:         "images",
	})
	if err != nil {
		t.Fatalf("resolveImageBucket: %v", err)
	}
	if got == nil {
		t.Fatalf("bucket: want non-nil")
	}
	if captured.Mode != gcp.ObjectStorageModeGCSEmulator || !captured.CompatibilityFallback {
		t.Fatalf("mode: want=%q fallback got=%+v", gcp.ObjectStorageModeGCSEmulator, captured)
	}
	if capturedBucket != "images" {
		t.Fatalf("bucket: want=%q got=%q", "images", capturedBucket)
	}
}

func TestResolveImageBucketConnectFailed(t *testing.T) {
	orig := newImageBucket
	t.Cleanup(func() { newImageBucket = orig })
	newImageBucket = func(context.Context, *logger.Logger, gcp.ObjectStorageConfig, string, string) (*gcp.ImageBucket, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	_, err := resolveImageBucket(context.Background(), logger.NewNop(), Config{ImageBucket: "images"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, got)
	}
}
