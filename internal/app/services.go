package app

import (
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

type Services struct {
	Schema   services.SchemaService
	Mapping  services.MappingService
	Upload   services.UploadService
	Metadata services.MetadataService
	Image    services.ImageService
}

func wireServices(log *logger.Logger, cfg Config, stores Stores) Services {
	log.Info("Wiring services...")
	schema := services.NewSchemaService(log, stores.Schema, stores.ChangeLog)
	return Services{
		Schema:   schema,
		Mapping:  services.NewMappingService(log, schema),
		Upload:   services.NewUploadService(log, schema, stores.Committer),
		Metadata: services.NewMetadataService(log, stores.Metadata),
		Image:    services.NewImageService(log, stores.Blobs, cfg.MaxImageBytes),
	}
}
