package app

import (
	"github.com/yungbote/graphadmin-backend/internal/http"
	httpH "github.com/yungbote/graphadmin-backend/internal/http/handlers"
	"github.com/yungbote/graphadmin-backend/internal/observability"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Schema   *httpH.SchemaHandler
	Graph    *httpH.GraphHandler
	Metadata *httpH.MetadataHandler
	Image    *httpH.ImageHandler
}

func wireHandlers(log *logger.Logger, cfg Config, svc Services, metrics *observability.Metrics, pingers map[string]httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(pingers),
		Schema:   httpH.NewSchemaHandler(log, svc.Schema),
		Graph:    httpH.NewGraphHandler(log, svc.Mapping, svc.Upload, metrics, cfg.MaxUploadBytes),
		Metadata: httpH.NewMetadataHandler(svc.Metadata),
		Image:    httpH.NewImageHandler(log, svc.Image, cfg.MaxImageBytes),
	}
}

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) http.RouterConfig {
	return http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSAllowOrigins,
		SchemaHandler:   handlers.Schema,
		GraphHandler:    handlers.Graph,
		MetadataHandler: handlers.Metadata,
		ImageHandler:    handlers.Image,
		HealthHandler:   handlers.Health,
	}
}
