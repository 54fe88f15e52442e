// Package audit records administrative overrides that bypass workflow
// guards, so forced edits stay visible after the fact.
package audit

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
)

// Record writes an audit row. Best-effort: a failed audit write is logged,
// not returned, since the override it documents has already happened.
func Record(db *gorm.DB, entity string, entityID uint, action string, actorID uint, detail string) {
	entry := models.AuditLog{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		ActorID:  actorID,
		Detail:   detail,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit: record %s %s %d: %v", action, entity, entityID, err)
	}
}

// ForEntity returns the audit trail for one entity, newest first.
func ForEntity(db *gorm.DB, entity string, entityID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := db.Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("audit: list %s %d: %w", entity, entityID, err)
	}
	return entries, nil
}
