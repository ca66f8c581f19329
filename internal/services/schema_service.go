package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/modules/graphupload"
	"github.com/yungbote/graphadmin-backend/internal/platform/ctxutil"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// AllNodeTypes is the nodeType recorded for whole-schema saves.
const AllNodeTypes = domain.NodeTypeAll

type SchemaService interface {
	GetSchema(ctx context.Context) (domain.GraphSchema, error)
	UpdateSchema(ctx context.Context, schema domain.GraphSchema) error
	// GetNodeSchema returns nil without error when nodeType is unknown.
	GetNodeSchema(ctx context.Context, nodeType string) (*domain.NodeSchema, error)
	AppendChangeLog(ctx context.Context, in domain.ChangeLogInput) (*domain.SchemaChangeLog, error)
	GetChangeLogs(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error)

	AddProperty(ctx context.Context, nodeType string, def domain.PropertyDefinition) (domain.GraphSchema, error)
	UpdateProperty(ctx context.Context, nodeType, name string, patch domain.PropertyPatch) (domain.GraphSchema, error)
	DeleteProperty(ctx context.Context, nodeType, name string) (domain.GraphSchema, error)
	SaveSchema(ctx context.Context, schema domain.GraphSchema) error
	AddNodeType(ctx context.Context, nodeType string) (domain.GraphSchema, error)
	DeleteNodeType(ctx context.Context, nodeType string) (domain.GraphSchema, error)
}

type schemaService struct {
	log     *logger.Logger
	schemas SchemaRepo
	logs    ChangeLogRepo
	now     func() time.Time
	newID   func() string
}

func NewSchemaService(log *logger.Logger, schemas SchemaRepo, logs ChangeLogRepo) SchemaService {
	return &schemaService{
		log:     log.With("service", "SchemaService"),
		schemas: schemas,
		logs:    logs,
		now:     time.Now,
		newID:   func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:9] },
	}
}

func (s *schemaService) GetSchema(ctx context.Context) (domain.GraphSchema, error) {
	schema, err := s.schemas.Read(ctx)
	if err != nil {
		return domain.GraphSchema{}, domain.Wrap(domain.CodeUnavailable, "SchemaService.GetSchema", err)
	}
	if schema.NodeSchemas == nil {
		schema.NodeSchemas = []domain.NodeSchema{}
	}
	return schema, nil
}

func (s *schemaService) UpdateSchema(ctx context.Context, schema domain.GraphSchema) error {
	const op = "SchemaService.UpdateSchema"
	if err := validateSchema(schema); err != nil {
		return err
	}
	if err := s.schemas.Write(ctx, schema); err != nil {
		return domain.Wrap(domain.CodeUnavailable, op, err)
	}
	s.log.Debug("schema replaced", "node_types", len(schema.NodeSchemas))
	return nil
}

// validateSchema runs the structural checks and then confirms each default value survives
// coercion to its declared type.
func validateSchema(schema domain.GraphSchema) error {
	const op = "SchemaService.validateSchema"
	if err := schema.Validate(); err != nil {
		return err
	}
	for _, ns := range schema.NodeSchemas {
		for _, p := range ns.Properties {
			if p.DefaultValue == nil {
				continue
			}
			if _, _, err := graphupload.Coerce(p.DefaultValue, p.Type); err != nil {
				return domain.ValidationError(op, "%s.%s: defaultValue is not a valid %s", ns.NodeType, p.Name, p.Type)
			}
		}
	}
	return nil
}

func (s *schemaService) GetNodeSchema(ctx context.Context, nodeType string) (*domain.NodeSchema, error) {
	schema, err := s.GetSchema(ctx)
	if err != nil {
		return nil, err
	}
	ns, ok := schema.NodeSchema(strings.TrimSpace(nodeType))
	if !ok {
		return nil, nil
	}
	return &ns, nil
}

func (s *schemaService) AppendChangeLog(ctx context.Context, in domain.ChangeLogInput) (*domain.SchemaChangeLog, error) {
	const op = "SchemaService.AppendChangeLog"
	in.NodeType = strings.TrimSpace(in.NodeType)
	if in.NodeType == "" {
		return nil, domain.ValidationError(op, "nodeType is required")
	}
	if !in.Action.Valid() {
		return nil, domain.ValidationError(op, "unknown action %q", in.Action)
	}
	if in.ChangedBy == "" {
		in.ChangedBy = ctxutil.AdminUser(ctx)
	}
	now := s.now()
	entry := domain.SchemaChangeLog{
		ID:           fmt.Sprintf("log_%d_%s", now.UnixMilli(), s.newID()),
		Timestamp:    now.UnixMilli(),
		NodeType:     in.NodeType,
		Action:       in.Action,
		PropertyName: in.PropertyName,
		Description:  in.Description,
		ChangedBy:    in.ChangedBy,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	return &entry, nil
}

// recordChange appends an audit entry for a mutation that already succeeded. Failures are logged
// and dropped; the mutation stands.
func (s *schemaService) recordChange(ctx context.Context, in domain.ChangeLogInput) {
	if _, err := s.AppendChangeLog(ctx, in); err != nil {
		s.log.Warn("change log append failed",
			"node_type", in.NodeType,
			"action", string(in.Action),
			"error", err,
		)
	}
}

func (s *schemaService) GetChangeLogs(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error) {
	if limit < 0 {
		limit = 0
	}
	entries, err := s.logs.ReadRecent(ctx, limit)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "SchemaService.GetChangeLogs", err)
	}
	if entries == nil {
		entries = []domain.SchemaChangeLog{}
	}
	return entries, nil
}

// mutate loads the schema, applies edit and persists the result.
func (s *schemaService) mutate(ctx context.Context, edit func(domain.GraphSchema) (domain.GraphSchema, error)) (domain.GraphSchema, error) {
	current, err := s.GetSchema(ctx)
	if err != nil {
		return domain.GraphSchema{}, err
	}
	next, err := edit(current)
	if err != nil {
		return domain.GraphSchema{}, err
	}
	if err := s.UpdateSchema(ctx, next); err != nil {
		return domain.GraphSchema{}, err
	}
	return next, nil
}

func (s *schemaService) AddProperty(ctx context.Context, nodeType string, def domain.PropertyDefinition) (domain.GraphSchema, error) {
	def.Name = strings.TrimSpace(def.Name)
	next, err := s.mutate(ctx, func(cur domain.GraphSchema) (domain.GraphSchema, error) {
		return cur.WithProperty(nodeType, def)
	})
	if err != nil {
		return domain.GraphSchema{}, err
	}
	s.recordChange(ctx, domain.ChangeLogInput{
		NodeType:     nodeType,
		Action:       domain.ChangeActionAdd,
		PropertyName: def.Name,
		Description:  fmt.Sprintf("%s node: property %q added", nodeType, def.Name),
	})
	return next, nil
}

func (s *schemaService) UpdateProperty(ctx context.Context, nodeType, name string, patch domain.PropertyPatch) (domain.GraphSchema, error) {
	if patch.Empty() {
		return domain.GraphSchema{}, domain.ValidationError("SchemaService.UpdateProperty", "patch has no fields")
	}
	if patch.Name != nil {
		renamed := strings.TrimSpace(*patch.Name)
		patch.Name = &renamed
	}
	next, err := s.mutate(ctx, func(cur domain.GraphSchema) (domain.GraphSchema, error) {
		return cur.WithPropertyPatched(nodeType, name, patch)
	})
	if err != nil {
		return domain.GraphSchema{}, err
	}
	desc := fmt.Sprintf("%s node: property %q updated", nodeType, name)
	if patch.Name != nil && *patch.Name != name {
		desc = fmt.Sprintf("%s node: property %q renamed to %q", nodeType, name, *patch.Name)
	}
	s.recordChange(ctx, domain.ChangeLogInput{
		NodeType:     nodeType,
		Action:       domain.ChangeActionUpdate,
		PropertyName: name,
		Description:  desc,
	})
	return next, nil
}

func (s *schemaService) DeleteProperty(ctx context.Context, nodeType, name string) (domain.GraphSchema, error) {
	next, err := s.mutate(ctx, func(cur domain.GraphSchema) (domain.GraphSchema, error) {
		return cur.WithoutProperty(nodeType, name)
	})
	if err != nil {
		return domain.GraphSchema{}, err
	}
	s.recordChange(ctx, domain.ChangeLogInput{
		NodeType:     nodeType,
		Action:       domain.ChangeActionDelete,
		PropertyName: name,
		Description:  fmt.Sprintf("%s node: property %q deleted", nodeType, name),
	})
	return next, nil
}

func (s *schemaService) SaveSchema(ctx context.Context, schema domain.GraphSchema) error {
	if err := s.UpdateSchema(ctx, schema); err != nil {
		return err
	}
	s.recordChange(ctx, domain.ChangeLogInput{
		NodeType:    AllNodeTypes,
		Action:      domain.ChangeActionSave,
		Description: "full schema saved",
	})
	return nil
}

func (s *schemaService) AddNodeType(ctx context.Context, nodeType string) (domain.GraphSchema, error) {
	nodeType = strings.TrimSpace(nodeType)
	next, err := s.mutate(ctx, func(cur domain.GraphSchema) (domain.GraphSchema, error) {
		return cur.WithNodeType(nodeType)
	})
	if err != nil {
		return domain.GraphSchema{}, err
	}
	s.recordChange(ctx, domain.ChangeLogInput{
		NodeType:    nodeType,
		Action:      domain.ChangeActionAdd,
		Description: fmt.Sprintf("node type %q added", nodeType),
	})
	return next, nil
}

func (s *schemaService) DeleteNodeType(ctx context.Context, nodeType string) (domain.GraphSchema, error) {
	next, err := s.mutate(ctx, func(cur domain.GraphSchema) (domain.GraphSchema, error) {
		return cur.WithoutNodeType(nodeType)
	})
	if err != nil {
		return domain.GraphSchema{}, err
	}
	s.recordChange(ctx, domain.ChangeLogInput{
		NodeType:    nodeType,
		Action:      domain.ChangeActionDelete,
		Description: fmt.Sprintf("node type %q deleted", nodeType),
	})
	return next, nil
}
