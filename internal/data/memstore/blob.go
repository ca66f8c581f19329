package memstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

const DefaultBlobBaseURL = "mem://blobs"

type blob struct {
	contentType string
	data        []byte
}

// BlobStore holds uploaded objects in memory and hands out URLs under baseURL.
type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]blob
}

func NewBlobStore(baseURL string) *BlobStore {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBlobBaseURL
	}
	return &BlobStore{baseURL: baseURL, objects: map[string]blob{}}
}

func (s *BlobStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	const op = "MemBlobStore.Put"
	if err := ctx.Err(); err != nil {
		return "", domain.UnavailableError(op, err)
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", domain.ValidationError(op, "object key is required")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", domain.UnavailableError(op, err)
	}
	s.mu.Lock()
	s.objects[key] = blob{contentType: contentType, data: buf.Bytes()}
	s.mu.Unlock()
	return s.baseURL + "/" + key, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	const op = "MemBlobStore.Delete"
	if err := ctx.Err(); err != nil {
		return domain.UnavailableError(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return domain.NotFoundError(op, "no object %q", key)
	}
	delete(s.objects, key)
	return nil
}

func (s *BlobStore) KeyFromURL(raw string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(raw, prefix)
	return key, key != ""
}

// Object returns the stored bytes and content type for key.
func (s *BlobStore) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), b.data...), b.contentType, true
}
