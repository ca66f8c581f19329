package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/graphadmin-backend/internal/http/handlers"
	httpMW "github.com/yungbote/graphadmin-backend/internal/http/middleware"
	"github.com/yungbote/graphadmin-backend/internal/observability"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	SchemaHandler   *httpH.SchemaHandler
	GraphHandler    *httpH.GraphHandler
	MetadataHandler *httpH.MetadataHandler
	ImageHandler    *httpH.ImageHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "graphadmin"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Schema
	if h := cfg.SchemaHandler; h != nil {
		api.GET("/schema", h.GetSchema)
		api.PUT("/schema", h.PutSchema)
		api.GET("/schema/logs", h.GetChangeLogs)
		api.POST("/schema/logs", h.AppendChangeLog)
		api.POST("/schema/node-types", h.AddNodeType)
		api.GET("/schema/node-types/:nodeType", h.GetNodeSchema)
		api.DELETE("/schema/node-types/:nodeType", h.DeleteNodeType)
		api.POST("/schema/node-types/:nodeType/properties", h.AddProperty)
		api.PATCH("/schema/node-types/:nodeType/properties/:name", h.UpdateProperty)
		api.DELETE("/schema/node-types/:nodeType/properties/:name", h.DeleteProperty)
	}

	// Graph upload
	if h := cfg.GraphHandler; h != nil {
		api.POST("/graph/parse", h.Parse)
		api.POST("/graph/mappings/suggest", h.Suggest)
		api.POST("/graph/upload/preview", h.Preview)
		api.POST("/graph/upload", h.Upload)
	}

	// Metadata
	if h := cfg.MetadataHandler; h != nil {
		api.GET("/metadata/universes", h.ListUniverses)
		api.GET("/metadata/universe-nodes", h.ListAllUniverseNodes)
		api.GET("/metadata/universe/:universe", h.ListByUniverse)
		api.DELETE("/metadata/universe/:universe", h.DeleteUniverse)
		api.GET("/metadata/:id", h.Get)
		api.PATCH("/metadata/:id", h.Update)
	}

	// Images
	if h := cfg.ImageHandler; h != nil {
		api.POST("/images/upload", h.Upload)
		api.DELETE("/images", h.Delete)
		api.DELETE("/images/delete", h.Delete)
	}

	return r
}
