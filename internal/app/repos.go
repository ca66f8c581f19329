package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/graphadmin-backend/internal/data/cache"
	"github.com/yungbote/graphadmin-backend/internal/data/graph"
	"github.com/yungbote/graphadmin-backend/internal/data/memstore"
	"github.com/yungbote/graphadmin-backend/internal/data/repos"
	"github.com/yungbote/graphadmin-backend/internal/data/seed"
	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

// Stores are the collaborators behind the services. Graph is set only for the in-process graph
// backend.
type Stores struct {
	Schema    services.SchemaRepo
	ChangeLog services.ChangeLogRepo
	Committer services.GraphCommitter
	Metadata  services.MetadataStore
	Blobs     services.BlobStore
	Graph     *memstore.Graph
}

func loadSeedSchema(cfg Config) (domain.GraphSchema, error) {
	if path := strings.TrimSpace(cfg.SchemaSeedPath); path != "" {
		return seed.LoadSchema(path)
	}
	return seed.Schema()
}

func wireStores(log *logger.Logger, cfg Config, clients Clients) (Stores, error) {
	log.Info("Wiring stores...")
	seedSchema, err := loadSeedSchema(cfg)
	if err != nil {
		return Stores{}, fmt.Errorf("load seed schema: %w", err)
	}

	var out Stores
	if clients.SQL != nil {
		out.Schema = repos.NewSchemaRepo(clients.SQL.DB(), log, seedSchema)
	} else {
		out.Schema = memstore.NewSchemaRepo(seedSchema)
	}

	switch {
	case clients.Redis != nil:
		out.ChangeLog = cache.NewChangeLog(clients.Redis, log, cfg.RedisChangeLogKey, cfg.ChangeLogCapacity)
	case clients.SQL != nil:
		out.ChangeLog = repos.NewChangeLogRepo(clients.SQL.DB(), log, cfg.ChangeLogCapacity)
	default:
		out.ChangeLog = memstore.NewChangeLog(cfg.ChangeLogCapacity)
	}

	if clients.Neo4j != nil {
		out.Committer = graph.NewCommitter(clients.Neo4j, log)
		out.Metadata = graph.NewMetadataStore(clients.Neo4j, log)
	} else {
		g := memstore.NewGraph()
		if cfg.SeedMemoryUniverse {
			universes, err := seed.Universes()
			if err != nil {
				return Stores{}, fmt.Errorf("load seed universes: %w", err)
			}
			if err := g.SeedMetadata(universes); err != nil {
				return Stores{}, fmt.Errorf("seed universes: %w", err)
			}
		}
		out.Graph = g
		out.Committer = g
		out.Metadata = g
	}

	if clients.Bucket != nil {
		out.Blobs = clients.Bucket
	} else {
		out.Blobs = memstore.NewBlobStore(memstore.DefaultBlobBaseURL)
	}
	return out, nil
}
