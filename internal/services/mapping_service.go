package services

import (
	"context"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/modules/mapping"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

type MappingService interface {
	// SuggestMappings returns an empty slice when nodeType is not in the schema.
	SuggestMappings(ctx context.Context, sourceProperties []string, nodeType string) ([]domain.PropertyMapping, error)
}

type mappingService struct {
	log     *logger.Logger
	schemas SchemaService
}

func NewMappingService(log *logger.Logger, schemas SchemaService) MappingService {
	return &mappingService{
		log:     log.With("service", "MappingService"),
		schemas: schemas,
	}
}

func (s *mappingService) SuggestMappings(ctx context.Context, sourceProperties []string, nodeType string) ([]domain.PropertyMapping, error) {
	ns, err := s.schemas.GetNodeSchema(ctx, nodeType)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		s.log.Debug("no schema for node type", "node_type", nodeType)
	}
	return mapping.Suggest(sourceProperties, ns), nil
}
