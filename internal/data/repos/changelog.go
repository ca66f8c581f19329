package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// ChangeLogRow is one audit entry. Seq records insertion order, which is the eviction order.
type ChangeLogRow struct {
	Seq          int64  `gorm:"primaryKey;autoIncrement"`
	ID           string `gorm:"uniqueIndex;size:64;not null"`
	Timestamp    int64  `gorm:"not null"`
	NodeType     string `gorm:"size:255;not null"`
	Action       string `gorm:"size:16;not null"`
	PropertyName string `gorm:"size:255"`
	Description  string `gorm:"type:text"`
	ChangedBy    string `gorm:"size:255"`
}

func (ChangeLogRow) TableName() string { return "schema_change_logs" }

func (r ChangeLogRow) toDomain() domain.SchemaChangeLog {
	return domain.SchemaChangeLog{
		ID:           r.ID,
		Timestamp:    r.Timestamp,
		NodeType:     r.NodeType,
		Action:       domain.ChangeAction(r.Action),
		PropertyName: r.PropertyName,
		Description:  r.Description,
		ChangedBy:    r.ChangedBy,
	}
}

// ChangeLogRepo keeps at most capacity rows, evicting by insertion order.
type ChangeLogRepo struct {
	db       *gorm.DB
	log      *logger.Logger
	capacity int
}

func NewChangeLogRepo(db *gorm.DB, baseLog *logger.Logger, capacity int) *ChangeLogRepo {
	if capacity <= 0 {
		capacity = domain.DefaultChangeLogCapacity
	}
	return &ChangeLogRepo{
		db:       db,
		log:      baseLog.With("repo", "ChangeLogRepo"),
		capacity: capacity,
	}
}

func (r *ChangeLogRepo) Capacity() int { return r.capacity }

func (r *ChangeLogRepo) Append(ctx context.Context, entry domain.SchemaChangeLog) error {
	const op = "ChangeLogRepo.Append"
	row := ChangeLogRow{
		ID:           entry.ID,
		Timestamp:    entry.Timestamp,
		NodeType:     entry.NodeType,
		Action:       string(entry.Action),
		PropertyName: entry.PropertyName,
		Description:  entry.Description,
		ChangedBy:    entry.ChangedBy,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		// Everything at or below the (capacity+1)-th newest seq is evicted.
		return tx.Exec(
			`DELETE FROM schema_change_logs WHERE seq <= (SELECT seq FROM schema_change_logs ORDER BY seq DESC LIMIT 1 OFFSET ?)`,
			r.capacity,
		).Error
	})
	return MapError(op, err)
}

func (r *ChangeLogRepo) ReadRecent(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error) {
	const op = "ChangeLogRepo.ReadRecent"
	if limit <= 0 || limit > r.capacity {
		limit = r.capacity
	}
	var rows []ChangeLogRow
	if err := r.db.WithContext(ctx).Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, MapError(op, err)
	}
	out := make([]domain.SchemaChangeLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
