package models

import "time"

// Notification is a per-user record of a workflow event. Created by the
// dispatcher; mutated only by the recipient marking it read.
type Notification struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"index" json:"project_id"`
	DepartmentID *uint      `json:"department_id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	Type         string     `gorm:"size:48;not null" json:"type"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Message      string     `gorm:"type:text" json:"message"`
	IsRead       bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt       *time.Time `json:"read_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
