package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/graphadmin-backend/internal/data/memstore"
	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func universeSchema() domain.GraphSchema {
	return domain.GraphSchema{NodeSchemas: []domain.NodeSchema{{
		NodeType: "universe",
		Properties: []domain.PropertyDefinition{
			{Name: "name", Type: domain.PropertyTypeString, Required: true},
			{Name: "title", Type: domain.PropertyTypeString},
		},
	}}}
}

type fakeSchemaRepo struct {
	schema   domain.GraphSchema
	readErr  error
	writeErr error
	writes   int
}

func (f *fakeSchemaRepo) Read(ctx context.Context) (domain.GraphSchema, error) {
	if f.readErr != nil {
		return domain.GraphSchema{}, f.readErr
	}
	return f.schema.Clone(), nil
}

func (f *fakeSchemaRepo) Write(ctx context.Context, schema domain.GraphSchema) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.schema = schema.Clone()
	return nil
}

type failingChangeLog struct {
	calls int
}

func (f *failingChangeLog) Append(ctx context.Context, entry domain.SchemaChangeLog) error {
	f.calls++
	return errors.New("redis: connection refused")
}

func (f *failingChangeLog) ReadRecent(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error) {
	return nil, errors.New("redis: connection refused")
}

type fakeCommitter struct {
	calls   int
	last    domain.EntityBatch
	failErr error
}

func (f *fakeCommitter) Commit(ctx context.Context, batch domain.EntityBatch) error {
	f.calls++
	f.last = batch
	return f.failErr
}

type fakeBlobs struct {
	*memstore.BlobStore
	putErr    error
	deleteErr error
	deleted   []string
}

func (f *fakeBlobs) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if f.putErr != nil {
		_, _ = io.Copy(io.Discard, r)
		return "", f.putErr
	}
	return f.BlobStore.Put(ctx, key, contentType, r)
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.BlobStore.Delete(ctx, key)
}
