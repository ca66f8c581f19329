package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/platform/neo4jdb"
)

// UniverseLabel is the node label of universe records.
const UniverseLabel = "universe"

// MetadataStore reads and edits entity records in Neo4j. Records are addressed by elementId;
// a universe is every universe-labelled node whose name (or universe field) equals it.
type MetadataStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewMetadataStore(client *neo4jdb.Client, baseLog *logger.Logger) *MetadataStore {
	return &MetadataStore{
		client: client,
		log:    baseLog.With("service", "Neo4jMetadataStore"),
	}
}

var (
	listUniversesCypher = fmt.Sprintf(`
MATCH (u:%s)
WITH coalesce(u.name, u.universe) AS name, min(coalesce(u.created_at, 0)) AS first_seen
WHERE name IS NOT NULL
RETURN name
ORDER BY first_seen, name
`, quoteIdent(UniverseLabel))

	listByUniverseCypher = fmt.Sprintf(`
MATCH (u:%s)
WHERE u.name = $universe OR u.universe = $universe
RETURN elementId(u) AS id, properties(u) AS props
ORDER BY coalesce(u.created_at, 0), id
`, quoteIdent(UniverseLabel))

	getCypher = `
MATCH (n)
WHERE elementId(n) = $id
RETURN elementId(n) AS id, properties(n) AS props
`

	updateCypher = `
MATCH (n)
WHERE elementId(n) = $id
SET n += $fields, n.updatedAt = $now
RETURN elementId(n) AS id, properties(n) AS props
`

	deleteUniverseCypher = fmt.Sprintf(`
MATCH (u:%s)
WHERE u.name = $universe OR u.universe = $universe
DETACH DELETE u
`, quoteIdent(UniverseLabel))
)

func (s *MetadataStore) ready(op string) error {
	if s.client == nil || s.client.Driver == nil {
		return domain.UnavailableError(op, fmt.Errorf("neo4j client not configured"))
	}
	return nil
}

func (s *MetadataStore) ListUniverses(ctx context.Context) ([]string, error) {
	const op = "Neo4jMetadataStore.ListUniverses"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, listUniversesCypher, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(records))
		for _, rec := range records {
			if v, ok := rec.Get("name"); ok {
				if name, ok := v.(string); ok {
					names = append(names, name)
				}
			}
		}
		return names, nil
	})
	if err != nil {
		return nil, classifyRead(op, err)
	}
	return out.([]string), nil
}

func (s *MetadataStore) ListByUniverse(ctx context.Context, universe string) ([]domain.GraphMetadata, error) {
	const op = "Neo4jMetadataStore.ListByUniverse"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return s.collect(ctx, tx, listByUniverseCypher, map[string]any{"universe": universe})
	})
	if err != nil {
		return nil, classifyRead(op, err)
	}
	return out.([]domain.GraphMetadata), nil
}

func (s *MetadataStore) Get(ctx context.Context, id string) (*domain.GraphMetadata, error) {
	const op = "Neo4jMetadataStore.Get"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return s.collect(ctx, tx, getCypher, map[string]any{"id": id})
	})
	if err != nil {
		return nil, classifyRead(op, err)
	}
	items := out.([]domain.GraphMetadata)
	if len(items) == 0 {
		return nil, domain.NotFoundError(op, "no metadata record %q", id)
	}
	return &items[0], nil
}

func (s *MetadataStore) Update(ctx context.Context, id string, patch domain.MetadataPatch) (*domain.GraphMetadata, error) {
	const op = "Neo4jMetadataStore.Update"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	params := map[string]any{
		"id":     id,
		"fields": patch.Fields(),
		"now":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return s.collect(ctx, tx, updateCypher, params)
	})
	if err != nil {
		return nil, classifyRead(op, err)
	}
	items := out.([]domain.GraphMetadata)
	if len(items) == 0 {
		return nil, domain.NotFoundError(op, "no metadata record %q", id)
	}
	return &items[0], nil
}

func (s *MetadataStore) DeleteUniverse(ctx context.Context, universe string) (int, error) {
	const op = "Neo4jMetadataStore.DeleteUniverse"
	if err := s.ready(op); err != nil {
		return 0, err
	}
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, deleteUniverseCypher, map[string]any{"universe": universe})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summary.Counters().NodesDeleted(), nil
	})
	if err != nil {
		return 0, classifyRead(op, err)
	}
	deleted := out.(int)
	s.log.Info("universe deleted", "universe", universe, "nodes_deleted", deleted)
	return deleted, nil
}

func (s *MetadataStore) collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]domain.GraphMetadata, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GraphMetadata, 0, len(records))
	for _, rec := range records {
		idVal, _ := rec.Get("id")
		propsVal, _ := rec.Get("props")
		id, _ := idVal.(string)
		props, _ := propsVal.(map[string]any)
		out = append(out, domain.MetadataFromProperties(id, props))
	}
	return out, nil
}
