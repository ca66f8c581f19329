package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/graphadmin-backend/internal/data/cache"
	"github.com/yungbote/graphadmin-backend/internal/data/memstore"
	"github.com/yungbote/graphadmin-backend/internal/http/handlers"
	"github.com/yungbote/graphadmin-backend/internal/http/middleware"
	"github.com/yungbote/graphadmin-backend/internal/platform/envutil"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	ChangeLogStore = "store"
	ChangeLogRedis = "redis"

	GraphMemory = "memory"
	GraphNeo4j  = "neo4j"

	BlobMemory = "memory"
	BlobGCS    = "gcs"
)

type Config struct {
	Port            string
	LogMode         string
	ServiceName     string
	Environment     string
	ShutdownTimeout time.Duration

	StoreDriver      string
	SQLitePath       string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string
	SchemaSeedPath   string

	ChangeLogBackend  string
	ChangeLogCapacity int
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisChangeLogKey string

	GraphBackend       string
	Neo4jURI           string
	Neo4jUser          string
	Neo4jPassword      string
	Neo4jDatabase      string
	Neo4jTimeout       time.Duration
	Neo4jMaxPoolSize   int
	SeedMemoryUniverse bool

	BlobBackend                string
	ImageBucket                string
	ImageCDNDomain             string
	ObjectStorageMode          string
	StorageEmulatorHost        string
	ObjectStoragePublicBaseURL string
	GoogleCredentials          string

	CORSAllowOrigins []string
	MaxImageBytes    int64
	MaxUploadBytes   int64
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		LogMode:         envLogMode(),
		ServiceName:     envutil.String("SERVICE_NAME", "graphadmin"),
		Environment:     envutil.String("APP_ENV", "local"),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),

		StoreDriver:      strings.ToLower(envutil.String("STORE_DRIVER", StoreMemory)),
		SQLitePath:       envutil.String("SQLITE_PATH", "graphadmin.db"),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
		PostgresName:     envutil.String("POSTGRES_NAME", "graphadmin"),
		PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		SchemaSeedPath:   envutil.String("SCHEMA_SEED_PATH", ""),

		ChangeLogBackend:  strings.ToLower(envutil.String("CHANGELOG_BACKEND", ChangeLogStore)),
		ChangeLogCapacity: envutil.Int("CHANGELOG_CAPACITY", memstore.DefaultChangeLogCapacity),
		RedisAddr:         envutil.String("REDIS_ADDR", ""),
		RedisPassword:     envutil.String("REDIS_PASSWORD", ""),
		RedisDB:           envutil.Int("REDIS_DB", 0),
		RedisChangeLogKey: envutil.String("REDIS_CHANGELOG_KEY", cache.DefaultChangeLogKey),

		GraphBackend:       strings.ToLower(envutil.String("GRAPH_BACKEND", GraphMemory)),
		Neo4jURI:           envutil.String("NEO4J_URI", ""),
		Neo4jUser:          envutil.String("NEO4J_USER", "neo4j"),
		Neo4jPassword:      envutil.String("NEO4J_PASSWORD", ""),
		Neo4jDatabase:      envutil.String("NEO4J_DATABASE", ""),
		Neo4jTimeout:       envutil.Duration("NEO4J_TIMEOUT", 10*time.Second),
		Neo4jMaxPoolSize:   envutil.Int("NEO4J_MAX_POOL_SIZE", 50),
		SeedMemoryUniverse: envutil.Bool("SEED_MEMORY_UNIVERSES", true),

		BlobBackend:                strings.ToLower(envutil.String("BLOB_BACKEND", BlobMemory)),
		ImageBucket:                envutil.String("IMAGE_BUCKET", ""),
		ImageCDNDomain:             envutil.String("IMAGE_CDN_DOMAIN", ""),
		ObjectStorageMode:          envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost:        envutil.String("STORAGE_EMULATOR_HOST", ""),
		ObjectStoragePublicBaseURL: envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
		GoogleCredentials:          envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""),

		CORSAllowOrigins: envutil.List("CORS_ALLOW_ORIGINS", middleware.DefaultAllowOrigins),
		MaxImageBytes:    envutil.Int64("MAX_IMAGE_BYTES", services.DefaultMaxImageBytes),
		MaxUploadBytes:   envutil.Int64("MAX_UPLOAD_BYTES", handlers.DefaultMaxGraphFileBytes),
	}
	if log != nil {
		log.Info(
			"Config loaded",
			"port", cfg.Port,
			"store_driver", cfg.StoreDriver,
			"changelog_backend", cfg.ChangeLogBackend,
			"graph_backend", cfg.GraphBackend,
			"blob_backend", cfg.BlobBackend,
		)
	}
	return cfg
}

// Validate rejects unknown backends and backends missing the settings they need.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.ChangeLogBackend {
	case ChangeLogStore:
	case ChangeLogRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("CHANGELOG_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported CHANGELOG_BACKEND %q", c.ChangeLogBackend)
	}
	switch c.GraphBackend {
	case GraphMemory:
	case GraphNeo4j:
		if strings.TrimSpace(c.Neo4jURI) == "" {
			return fmt.Errorf("GRAPH_BACKEND=neo4j requires NEO4J_URI")
		}
	default:
		return fmt.Errorf("unsupported GRAPH_BACKEND %q", c.GraphBackend)
	}
	switch c.BlobBackend {
	case BlobMemory:
	case BlobGCS:
		if strings.TrimSpace(c.ImageBucket) == "" {
			return fmt.Errorf("BLOB_BACKEND=gcs requires IMAGE_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q", c.BlobBackend)
	}
	if c.ChangeLogCapacity <= 0 {
		return fmt.Errorf("CHANGELOG_CAPACITY must be positive, got %d", c.ChangeLogCapacity)
	}
	return nil
}

func envLogMode() string {
	return envutil.String("LOG_MODE", "development")
}
