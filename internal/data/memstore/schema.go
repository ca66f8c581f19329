package memstore

import (
	"context"
	"sync"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// SchemaRepo keeps the schema document in process. Reads and writes copy, so callers never share
// slices with the stored document.
type SchemaRepo struct {
	mu     sync.RWMutex
	schema domain.GraphSchema
}

func NewSchemaRepo(seed domain.GraphSchema) *SchemaRepo {
	return &SchemaRepo{schema: seed.Clone()}
}

func (r *SchemaRepo) Read(ctx context.Context) (domain.GraphSchema, error) {
	if err := ctx.Err(); err != nil {
		return domain.GraphSchema{}, domain.UnavailableError("MemSchemaRepo.Read", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schema.Clone(), nil
}

func (r *SchemaRepo) Write(ctx context.Context, schema domain.GraphSchema) error {
	if err := ctx.Err(); err != nil {
		return domain.UnavailableError("MemSchemaRepo.Write", err)
	}
	r.mu.Lock()
	r.schema = schema.Clone()
	r.mu.Unlock()
	return nil
}
