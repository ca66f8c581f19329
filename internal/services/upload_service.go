package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/modules/graphupload"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// UploadPreview is what ApplyMappings would commit, without committing it.
type UploadPreview struct {
	NodeType      string                      `json:"nodeType"`
	Entities      []domain.Entity             `json:"entities"`
	Relationships []domain.EntityRelationship `json:"relationships"`
	Warnings      []domain.FieldWarning       `json:"warnings"`
}

type UploadService interface {
	PreviewMappings(ctx context.Context, data *domain.UploadedGraphData, mappings []domain.PropertyMapping) (*UploadPreview, error)
	// ApplyMappings coerces the data and commits it as one batch. Validation failures never
	// reach the committer; committer errors are returned as-is and not retried.
	ApplyMappings(ctx context.Context, data *domain.UploadedGraphData, mappings []domain.PropertyMapping) (*domain.UploadReport, error)
}

type uploadService struct {
	log       *logger.Logger
	schemas   SchemaService
	committer GraphCommitter
	newKey    func() string
}

func NewUploadService(log *logger.Logger, schemas SchemaService, committer GraphCommitter) UploadService {
	return &uploadService{
		log:       log.With("service", "UploadService"),
		schemas:   schemas,
		committer: committer,
	}
}

func (s *uploadService) build(ctx context.Context, op string, data *domain.UploadedGraphData, mappings []domain.PropertyMapping) (graphupload.Result, error) {
	nodeType, err := graphupload.CheckPreconditions(data, mappings)
	if err != nil {
		return graphupload.Result{}, err
	}
	ns, err := s.schemas.GetNodeSchema(ctx, nodeType)
	if err != nil {
		return graphupload.Result{}, err
	}
	if ns == nil {
		return graphupload.Result{}, domain.ValidationError(op, "unknown nodeType %q", nodeType)
	}
	return graphupload.Apply(data, mappings, *ns, graphupload.Options{NewKey: s.newKey})
}

func (s *uploadService) PreviewMappings(ctx context.Context, data *domain.UploadedGraphData, mappings []domain.PropertyMapping) (*UploadPreview, error) {
	res, err := s.build(ctx, "UploadService.PreviewMappings", data, mappings)
	if err != nil {
		return nil, err
	}
	rels := res.Batch.Relationships
	if rels == nil {
		rels = []domain.EntityRelationship{}
	}
	return &UploadPreview{
		NodeType:      res.Batch.NodeType,
		Entities:      res.Batch.Entities,
		Relationships: rels,
		Warnings:      res.Warnings,
	}, nil
}

func (s *uploadService) ApplyMappings(ctx context.Context, data *domain.UploadedGraphData, mappings []domain.PropertyMapping) (*domain.UploadReport, error) {
	const op = "UploadService.ApplyMappings"
	ctx, span := otel.Tracer("graphadmin/services").Start(ctx, op)
	defer span.End()

	res, err := s.build(ctx, op, data, mappings)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("graph.node_type", res.Batch.NodeType),
		attribute.Int("graph.entities", len(res.Batch.Entities)),
		attribute.Int("graph.warnings", len(res.Warnings)),
	)
	if s.committer == nil {
		err := domain.UnavailableError(op, fmt.Errorf("graph committer not configured"))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.committer.Commit(ctx, res.Batch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("graph commit failed",
			"node_type", res.Batch.NodeType,
			"entities", len(res.Batch.Entities),
			"error", err,
		)
		return nil, domain.Wrap(domain.CodeUploadRejected, op, err)
	}
	s.log.Info("graph batch committed",
		"node_type", res.Batch.NodeType,
		"entities", len(res.Batch.Entities),
		"relationships", len(res.Batch.Relationships),
		"warnings", len(res.Warnings),
	)
	return &domain.UploadReport{
		NodeType:          res.Batch.NodeType,
		NodeCount:         len(res.Batch.Entities),
		RelationshipCount: len(res.Batch.Relationships),
		Warnings:          res.Warnings,
	}, nil
}
