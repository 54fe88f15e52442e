package models

import "time"

// AuditLog records administrative overrides (forced updates and deletes)
// that bypass the normal workflow guards.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Entity     string    `gorm:"size:32;not null;index" json:"entity"`
	EntityID   uint      `gorm:"index;not null" json:"entity_id"`
	Action     string    `gorm:"size:32;not null" json:"action"`
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}
