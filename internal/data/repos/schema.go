package repos

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// DefaultSchemaDocumentID is the single row holding the graph schema.
const DefaultSchemaDocumentID = "default"

// SchemaDocument stores the whole GraphSchema as one JSON document; updates replace it.
type SchemaDocument struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (SchemaDocument) TableName() string { return "schema_documents" }

type SchemaRepo struct {
	db   *gorm.DB
	log  *logger.Logger
	seed domain.GraphSchema
}

// NewSchemaRepo returns a repo that serves seed until the first write.
func NewSchemaRepo(db *gorm.DB, baseLog *logger.Logger, seed domain.GraphSchema) *SchemaRepo {
	return &SchemaRepo{
		db:   db,
		log:  baseLog.With("repo", "SchemaRepo"),
		seed: seed.Clone(),
	}
}

func (r *SchemaRepo) Read(ctx context.Context) (domain.GraphSchema, error) {
	const op = "SchemaRepo.Read"
	var row SchemaDocument
	err := r.db.WithContext(ctx).Where("id = ?", DefaultSchemaDocumentID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.seed.Clone(), nil
	}
	if err != nil {
		return domain.GraphSchema{}, MapError(op, err)
	}
	var schema domain.GraphSchema
	if err := json.Unmarshal(row.Document, &schema); err != nil {
		return domain.GraphSchema{}, domain.NewError(domain.CodeInternal, op, "stored schema document is corrupt", err)
	}
	if schema.NodeSchemas == nil {
		schema.NodeSchemas = []domain.NodeSchema{}
	}
	return schema, nil
}

func (r *SchemaRepo) Write(ctx context.Context, schema domain.GraphSchema) error {
	const op = "SchemaRepo.Write"
	raw, err := json.Marshal(schema)
	if err != nil {
		return domain.NewError(domain.CodeInternal, op, "encode schema document", err)
	}
	row := SchemaDocument{
		ID:        DefaultSchemaDocumentID,
		Document:  datatypes.JSON(raw),
		UpdatedAt: time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		r.log.Error("schema write failed", "error", err)
		return MapError(op, err)
	}
	r.log.Debug("schema written", "node_types", len(schema.NodeSchemas))
	return nil
}
