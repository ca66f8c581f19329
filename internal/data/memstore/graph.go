package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// UniverseLabel is the node type the metadata editor lists and edits.
const UniverseLabel = "universe"

type memNode struct {
	key   string
	label string
	props map[string]any
}

type relKey struct {
	source, target, relType string
}

// Graph is an in-process property graph. It accepts entity batches like the Neo4j committer
// (merge by key, whole batch or nothing) and serves universe nodes to the metadata editor.
type Graph struct {
	mu      sync.RWMutex
	nodes   map[string]*memNode
	order   []string
	rels    map[relKey]map[string]any
	commits int
	now     func() time.Time
}

func NewGraph() *Graph {
	return &Graph{
		nodes: map[string]*memNode{},
		rels:  map[relKey]map[string]any{},
		now:   time.Now,
	}
}

// SeedMetadata inserts metadata records as universe nodes keyed by their id.
func (g *Graph) SeedMetadata(items []domain.GraphMetadata) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("memstore: seed record without id")
		}
		props, err := metadataProps(item)
		if err != nil {
			return fmt.Errorf("memstore: seed %s: %w", item.ID, err)
		}
		g.upsertLocked(item.ID, UniverseLabel, props)
	}
	return nil
}

func metadataProps(item domain.GraphMetadata) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	props := map[string]any{}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, err
	}
	delete(props, "id")
	return props, nil
}

func (g *Graph) upsertLocked(key, label string, props map[string]any) {
	n, ok := g.nodes[key]
	if !ok {
		n = &memNode{key: key, label: label, props: map[string]any{}}
		g.nodes[key] = n
		g.order = append(g.order, key)
	}
	n.label = label
	for k, v := range props {
		n.props[k] = v
	}
}

func (g *Graph) Commit(ctx context.Context, batch domain.EntityBatch) error {
	const op = "MemGraph.Commit"
	if err := ctx.Err(); err != nil {
		return domain.UnavailableError(op, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	pending := map[string]bool{}
	for _, e := range batch.Entities {
		if e.Key == "" {
			return domain.UploadError(op, fmt.Errorf("entity without key"))
		}
		pending[e.Key] = true
	}
	for _, r := range batch.Relationships {
		for _, k := range []string{r.SourceKey, r.TargetKey} {
			if _, ok := g.nodes[k]; !ok && !pending[k] {
				return domain.UploadError(op, fmt.Errorf("relationship %s references unknown node %q", r.Type, k))
			}
		}
	}

	syncedAt := g.now().UTC().Format(time.RFC3339Nano)
	for _, e := range batch.Entities {
		props := make(map[string]any, len(e.Properties)+1)
		for k, v := range e.Properties {
			if v != nil {
				props[k] = v
			}
		}
		props["synced_at"] = syncedAt
		g.upsertLocked(e.Key, batch.NodeType, props)
	}
	for _, r := range batch.Relationships {
		k := relKey{source: r.SourceKey, target: r.TargetKey, relType: r.Type}
		props := g.rels[k]
		if props == nil {
			props = map[string]any{}
			g.rels[k] = props
		}
		for pk, pv := range r.Properties {
			props[pk] = pv
		}
		props["synced_at"] = syncedAt
	}
	g.commits++
	return nil
}

// Stats reports node, relationship and commit counts.
func (g *Graph) Stats() (nodes, relationships, commits int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes), len(g.rels), g.commits
}

// Node returns a copy of the stored properties for key.
func (g *Graph) Node(key string) (string, map[string]any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[key]
	if !ok {
		return "", nil, false
	}
	return n.label, copyProps(n.props), true
}

func copyProps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func universeName(n *memNode) string {
	if s, ok := n.props["name"].(string); ok && s != "" {
		return s
	}
	s, _ := n.props["universe"].(string)
	return s
}

func belongsTo(n *memNode, universe string) bool {
	if n.label != UniverseLabel {
		return false
	}
	name, _ := n.props["name"].(string)
	field, _ := n.props["universe"].(string)
	return name == universe || field == universe
}

func (g *Graph) ListUniverses(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.UnavailableError("MemGraph.ListUniverses", err)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, key := range g.order {
		n := g.nodes[key]
		if n.label != UniverseLabel {
			continue
		}
		name := universeName(n)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

func (g *Graph) ListByUniverse(ctx context.Context, universe string) ([]domain.GraphMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.UnavailableError("MemGraph.ListByUniverse", err)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := []domain.GraphMetadata{}
	for _, key := range g.order {
		n := g.nodes[key]
		if belongsTo(n, universe) {
			out = append(out, domain.MetadataFromProperties(n.key, n.props))
		}
	}
	return out, nil
}

func (g *Graph) Get(ctx context.Context, id string) (*domain.GraphMetadata, error) {
	const op = "MemGraph.Get"
	if err := ctx.Err(); err != nil {
		return nil, domain.UnavailableError(op, err)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, domain.NotFoundError(op, "no metadata record %q", id)
	}
	m := domain.MetadataFromProperties(n.key, n.props)
	return &m, nil
}

func (g *Graph) Update(ctx context.Context, id string, patch domain.MetadataPatch) (*domain.GraphMetadata, error) {
	const op = "MemGraph.Update"
	if err := ctx.Err(); err != nil {
		return nil, domain.UnavailableError(op, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, domain.NotFoundError(op, "no metadata record %q", id)
	}
	for k, v := range patch.Fields() {
		n.props[k] = v
	}
	n.props["updatedAt"] = g.now().UTC().Format(time.RFC3339Nano)
	m := domain.MetadataFromProperties(n.key, n.props)
	return &m, nil
}

func (g *Graph) DeleteUniverse(ctx context.Context, universe string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.UnavailableError("MemGraph.DeleteUniverse", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := map[string]bool{}
	kept := g.order[:0]
	for _, key := range g.order {
		if belongsTo(g.nodes[key], universe) {
			removed[key] = true
			delete(g.nodes, key)
			continue
		}
		kept = append(kept, key)
	}
	g.order = kept
	for k := range g.rels {
		if removed[k.source] || removed[k.target] {
			delete(g.rels, k)
		}
	}
	return len(removed), nil
}
