package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Department{},
		&models.Team{},
		&models.Project{},
		&models.ProjectDepartmentAssignment{},
		&models.DepartmentTask{},
		&models.MemberTask{},
		&models.Report{},
		&models.Warning{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
