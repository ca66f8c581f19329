package services

import (
	"context"
	"strings"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

type MetadataService interface {
	ListUniverses(ctx context.Context) ([]string, error)
	ListByUniverse(ctx context.Context, universe string) ([]domain.GraphMetadata, error)
	// ListAllUniverseNodes concatenates every universe's nodes in universe order.
	ListAllUniverseNodes(ctx context.Context) ([]domain.GraphMetadata, error)
	Get(ctx context.Context, id string) (*domain.GraphMetadata, error)
	Update(ctx context.Context, id string, patch domain.MetadataPatch) (*domain.GraphMetadata, error)
	DeleteUniverse(ctx context.Context, universe string) (int, error)
}

type metadataService struct {
	log   *logger.Logger
	store MetadataStore
}

func NewMetadataService(log *logger.Logger, store MetadataStore) MetadataService {
	return &metadataService{
		log:   log.With("service", "MetadataService"),
		store: store,
	}
}

func (s *metadataService) ListUniverses(ctx context.Context) ([]string, error) {
	names, err := s.store.ListUniverses(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "MetadataService.ListUniverses", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *metadataService) ListByUniverse(ctx context.Context, universe string) ([]domain.GraphMetadata, error) {
	const op = "MetadataService.ListByUniverse"
	universe = strings.TrimSpace(universe)
	if universe == "" {
		return nil, domain.ValidationError(op, "universe is required")
	}
	items, err := s.store.ListByUniverse(ctx, universe)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if items == nil {
		items = []domain.GraphMetadata{}
	}
	return items, nil
}

func (s *metadataService) ListAllUniverseNodes(ctx context.Context) ([]domain.GraphMetadata, error) {
	names, err := s.ListUniverses(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.GraphMetadata{}
	for _, name := range names {
		items, err := s.ListByUniverse(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *metadataService) Get(ctx context.Context, id string) (*domain.GraphMetadata, error) {
	const op = "MetadataService.Get"
	if strings.TrimSpace(id) == "" {
		return nil, domain.ValidationError(op, "id is required")
	}
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	return item, nil
}

func (s *metadataService) Update(ctx context.Context, id string, patch domain.MetadataPatch) (*domain.GraphMetadata, error) {
	const op = "MetadataService.Update"
	if strings.TrimSpace(id) == "" {
		return nil, domain.ValidationError(op, "id is required")
	}
	if len(patch.Fields()) == 0 {
		return nil, domain.ValidationError(op, "patch has no fields")
	}
	item, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	s.log.Info("metadata updated", "id", id, "fields", len(patch.Fields()))
	return item, nil
}

func (s *metadataService) DeleteUniverse(ctx context.Context, universe string) (int, error) {
	const op = "MetadataService.DeleteUniverse"
	universe = strings.TrimSpace(universe)
	if universe == "" {
		return 0, domain.ValidationError(op, "universe is required")
	}
	n, err := s.store.DeleteUniverse(ctx, universe)
	if err != nil {
		return 0, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if n == 0 {
		return 0, domain.NotFoundError(op, "no nodes in universe %q", universe)
	}
	s.log.Info("universe deleted", "universe", universe, "nodes", n)
	return n, nil
}
