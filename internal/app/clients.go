package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/graphadmin-backend/internal/data/db"
	"github.com/yungbote/graphadmin-backend/internal/http/handlers"
	"github.com/yungbote/graphadmin-backend/internal/platform/gcp"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/platform/neo4jdb"
	"github.com/yungbote/graphadmin-backend/internal/platform/redisdb"
)

// Clients holds the external connections selected by Config. Any of them may be nil when the
// matching backend is in-process.
type Clients struct {
	SQL    *db.Service
	Neo4j  *neo4jdb.Client
	Redis  *goredis.Client
	Bucket *gcp.ImageBucket
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	if cfg.StoreDriver != StoreMemory {
		sql, err := db.Open(log, db.Config{
			Driver:           cfg.StoreDriver,
			SQLitePath:       cfg.SQLitePath,
			PostgresHost:     cfg.PostgresHost,
			PostgresPort:     cfg.PostgresPort,
			PostgresUser:     cfg.PostgresUser,
			PostgresPassword: cfg.PostgresPassword,
			PostgresName:     cfg.PostgresName,
			PostgresSSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init %s store: %w", cfg.StoreDriver, err)
		}
		c.SQL = sql
	}

	if cfg.ChangeLogBackend == ChangeLogRedis {
		rdb, err := redisdb.New(log, redisdb.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			c.Close(ctx)
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = rdb
	}

	if cfg.GraphBackend == GraphNeo4j {
		client, err := neo4jdb.New(log, neo4jdb.Config{
			URI:         cfg.Neo4jURI,
			User:        cfg.Neo4jUser,
			Password:    cfg.Neo4jPassword,
			Database:    cfg.Neo4jDatabase,
			Timeout:     cfg.Neo4jTimeout,
			MaxPoolSize: cfg.Neo4jMaxPoolSize,
		})
		if err != nil {
			c.Close(ctx)
			return Clients{}, fmt.Errorf("init neo4j: %w", err)
		}
		c.Neo4j = client
	}

	if cfg.BlobBackend == BlobGCS {
		bucket, err := resolveImageBucket(ctx, log, cfg)
		if err != nil {
			c.Close(ctx)
			return Clients{}, err
		}
		c.Bucket = bucket
	}
	return c, nil
}

// Pingers lists the connected backends for the readiness probe.
func (c *Clients) Pingers() map[string]handlers.Pinger {
	out := map[string]handlers.Pinger{}
	if c == nil {
		return out
	}
	if c.SQL != nil {
		out["sql"] = sqlPinger{svc: c.SQL}
	}
	if c.Redis != nil {
		out["redis"] = redisPinger{rdb: c.Redis}
	}
	if c.Neo4j != nil {
		out["neo4j"] = c.Neo4j
	}
	return out
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.SQL != nil {
		_ = c.SQL.Close()
	}
}

type sqlPinger struct{ svc *db.Service }

func (p sqlPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.svc.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type redisPinger struct{ rdb *goredis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
