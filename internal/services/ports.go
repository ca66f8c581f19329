package services

import (
	"context"
	"io"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// SchemaRepo persists the whole schema document. Write replaces it; there is no version check,
// so concurrent writers resolve last-write-wins.
type SchemaRepo interface {
	Read(ctx context.Context) (domain.GraphSchema, error)
	Write(ctx context.Context, schema domain.GraphSchema) error
}

// ChangeLogRepo stores a bounded, most-recent-first audit trail.
type ChangeLogRepo interface {
	Append(ctx context.Context, entry domain.SchemaChangeLog) error
	ReadRecent(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error)
}

// GraphCommitter persists one coerced batch. A rejected batch is an upload_rejected error.
type GraphCommitter interface {
	Commit(ctx context.Context, batch domain.EntityBatch) error
}

type MetadataStore interface {
	ListUniverses(ctx context.Context) ([]string, error)
	ListByUniverse(ctx context.Context, universe string) ([]domain.GraphMetadata, error)
	Get(ctx context.Context, id string) (*domain.GraphMetadata, error)
	Update(ctx context.Context, id string, patch domain.MetadataPatch) (*domain.GraphMetadata, error)
	DeleteUniverse(ctx context.Context, universe string) (int, error)
}

type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}
