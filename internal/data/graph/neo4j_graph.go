package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/platform/neo4jdb"
)

// KeyProperty holds the entity key on every node written by the committer.
const KeyProperty = "_key"

// Committer writes entity batches to Neo4j. A batch is one write transaction: either every node
// and relationship lands or none do.
type Committer struct {
	client *neo4jdb.Client
	log    *logger.Logger

	mu              sync.Mutex
	constraintsDone map[string]bool
}

func NewCommitter(client *neo4jdb.Client, baseLog *logger.Logger) *Committer {
	return &Committer{
		client:          client,
		log:             baseLog.With("service", "Neo4jCommitter"),
		constraintsDone: map[string]bool{},
	}
}

type relGroup struct {
	relType string
	rows    []map[string]any
}

// nodeRows renders the batch entities as UNWIND rows.
func nodeRows(batch domain.EntityBatch, now string) []map[string]any {
	rows := make([]map[string]any, 0, len(batch.Entities))
	for _, e := range batch.Entities {
		props := propertyMap(e.Properties)
		props["synced_at"] = now
		rows = append(rows, map[string]any{
			"key":   e.Key,
			"props": props,
		})
	}
	return rows
}

// relationshipGroups buckets relationships by type, sorted for deterministic statement order.
func relationshipGroups(batch domain.EntityBatch) []relGroup {
	byType := map[string][]map[string]any{}
	for _, r := range batch.Relationships {
		byType[r.Type] = append(byType[r.Type], map[string]any{
			"source": r.SourceKey,
			"target": r.TargetKey,
			"props":  propertyMap(r.Properties),
		})
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]relGroup, 0, len(types))
	for _, t := range types {
		out = append(out, relGroup{relType: t, rows: byType[t]})
	}
	return out
}

func (c *Committer) Commit(ctx context.Context, batch domain.EntityBatch) error {
	const op = "Neo4jCommitter.Commit"
	if c.client == nil || c.client.Driver == nil {
		return domain.UnavailableError(op, fmt.Errorf("neo4j client not configured"))
	}
	ctx, span := otel.Tracer("graphadmin/neo4j").Start(ctx, "neo4j.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("graph.node_type", batch.NodeType),
		attribute.Int("graph.entities", len(batch.Entities)),
		attribute.Int("graph.relationships", len(batch.Relationships)),
	)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	label := quoteIdent(batch.NodeType)
	nodes := nodeRows(batch, now)
	groups := relationshipGroups(batch)

	session := c.client.WriteSession(ctx)
	defer session.Close(ctx)

	c.ensureConstraint(ctx, session, batch.NodeType)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, fmt.Sprintf(`
UNWIND $rows AS row
MERGE (n:%s {%s: row.key})
SET n += row.props
`, label, KeyProperty), map[string]any{"rows": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		for _, g := range groups {
			res, err := tx.Run(ctx, fmt.Sprintf(`
UNWIND $rows AS row
MATCH (a:%[1]s {%[2]s: row.source})
MATCH (b:%[1]s {%[2]s: row.target})
MERGE (a)-[r:%[3]s]->(b)
SET r += row.props, r.synced_at = $synced_at
`, label, KeyProperty, quoteIdent(g.relType)), map[string]any{"rows": g.rows, "synced_at": now})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		c.log.Error("neo4j commit failed", "node_type", batch.NodeType, "entities", len(batch.Entities), "error", err)
		return classifyCommit(op, err)
	}
	c.log.Info("neo4j commit complete", "node_type", batch.NodeType, "entities", len(nodes), "relationship_types", len(groups))
	return nil
}

func (c *Committer) ensureConstraint(ctx context.Context, session neo4j.SessionWithContext, nodeType string) {
	c.mu.Lock()
	done := c.constraintsDone[nodeType]
	c.mu.Unlock()
	if done {
		return
	}
	q := fmt.Sprintf(`CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE`, quoteIdent(nodeType), KeyProperty)
	res, err := session.Run(ctx, q, nil)
	if err != nil {
		c.log.Warn("neo4j schema init failed (continuing)", "node_type", nodeType, "error", err)
		return
	}
	if _, err := res.Consume(ctx); err != nil {
		c.log.Warn("neo4j schema init failed (continuing)", "node_type", nodeType, "error", err)
		return
	}
	c.mu.Lock()
	c.constraintsDone[nodeType] = true
	c.mu.Unlock()
}
