package graph

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/platform/neo4jdb"
)

func integrationClient(t *testing.T) *neo4jdb.Client {
	t.Helper()
	uri := os.Getenv("TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("TEST_NEO4J_URI not set")
	}
	client, err := neo4jdb.New(logger.NewNop(), neo4jdb.Config{
		URI:      uri,
		User:     os.Getenv("TEST_NEO4J_USER"),
		Password: os.Getenv("TEST_NEO4J_PASSWORD"),
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("neo4jdb.New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client
}

func TestCommitAndReadUniverseIntegration(t *testing.T) {
	client := integrationClient(t)
	ctx := context.Background()
	log := logger.NewNop()
	universe := fmt.Sprintf("itest-%d", time.Now().UnixNano())

	committer := NewCommitter(client, log)
	batch := domain.EntityBatch{
		NodeType: UniverseLabel,
		Entities: []domain.Entity{
			{Key: universe + "-a", NodeType: UniverseLabel, Properties: map[string]any{"name": universe, "created_at": int64(1)}},
			{Key: universe + "-b", NodeType: UniverseLabel, Properties: map[string]any{"universe": universe, "created_at": int64(2)}},
		},
		Relationships: []domain.EntityRelationship{
			{SourceKey: universe + "-a", TargetKey: universe + "-b", Type: "RELATED_TO"},
		},
	}
	if err := committer.Commit(ctx, batch); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	// Re-committing the same keys merges instead of duplicating.
	if err := committer.Commit(ctx, batch); err != nil {
		t.Fatalf("Commit again: %v", err)
	}

	store := NewMetadataStore(client, log)
	items, err := store.ListByUniverse(ctx, universe)
	if err != nil {
		t.Fatalf("ListByUniverse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListByUniverse: want=2 got=%d", len(items))
	}

	title := "renamed"
	updated, err := store.Update(ctx, items[0].ID, domain.MetadataPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title == nil || *updated.Title != title || updated.UpdatedAt == nil {
		t.Fatalf("Update: got=%+v", updated)
	}

	deleted, err := store.DeleteUniverse(ctx, universe)
	if err != nil {
		t.Fatalf("DeleteUniverse: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("DeleteUniverse: want=2 got=%d", deleted)
	}
	if _, err := store.Get(ctx, items[0].ID); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("Get after delete: want=not_found got=%v", err)
	}
}
