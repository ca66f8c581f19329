package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/gcp"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// DefaultMaxImageBytes caps a single representative-image upload.
const DefaultMaxImageBytes int64 = 10 << 20

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ImageService interface {
	Upload(ctx context.Context, in ImageUpload) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

type imageService struct {
	log      *logger.Logger
	blobs    BlobStore
	maxBytes int64
	now      func() time.Time
}

func NewImageService(log *logger.Logger, blobs BlobStore, maxBytes int64) ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &imageService{
		log:      log.With("service", "ImageService"),
		blobs:    blobs,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// imageKey builds images/<millis>_<name> with the name reduced to a safe base name.
func imageKey(now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '?' || r == '#' || r == '%':
			return '_'
		case r < 0x20:
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	return fmt.Sprintf("images/%d_%s", now.UnixMilli(), name)
}

func (s *imageService) Upload(ctx context.Context, in ImageUpload) (string, error) {
	const op = "ImageService.Upload"
	ct := strings.ToLower(strings.TrimSpace(in.ContentType))
	if !strings.HasPrefix(ct, "image/") {
		return "", domain.ValidationError(op, "only image files can be uploaded, got %q", in.ContentType)
	}
	if in.Size > s.maxBytes {
		return "", domain.ValidationError(op, "image is %d bytes, limit is %d", in.Size, s.maxBytes)
	}
	if in.Body == nil {
		return "", domain.ValidationError(op, "image body is required")
	}
	body := &limitedReader{r: in.Body, remaining: s.maxBytes}
	key := imageKey(s.now(), in.Filename)
	url, err := s.blobs.Put(ctx, key, ct, body)
	if body.exceeded {
		_ = s.blobs.Delete(ctx, key)
		return "", domain.ValidationError(op, "image exceeds %d bytes", s.maxBytes)
	}
	if err != nil {
		return "", domain.Wrap(domain.CodeUnavailable, op, err)
	}
	s.log.Info("image stored", "key", key, "content_type", ct)
	return url, nil
}

func (s *imageService) DeleteByURL(ctx context.Context, url string) error {
	const op = "ImageService.DeleteByURL"
	key, ok := s.blobs.KeyFromURL(strings.TrimSpace(url))
	if !ok {
		return domain.ValidationError(op, "url %q is not served by this image store", url)
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		if errors.Is(err, gcp.ErrObjectNotFound) {
			return domain.NotFoundError(op, "no image at %q", url)
		}
		return domain.Wrap(domain.CodeUnavailable, op, err)
	}
	s.log.Info("image deleted", "key", key)
	return nil
}

// limitedReader fails once more than remaining bytes have been read.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

var errImageTooLarge = errors.New("image too large")

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		l.exceeded = true
		return 0, errImageTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, errImageTooLarge
	}
	return n, err
}
