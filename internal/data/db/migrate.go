package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/graphadmin-backend/internal/data/repos"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&repos.SchemaDocument{},
		&repos.ChangeLogRow{},
	)
}
