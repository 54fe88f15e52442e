package models

import "time"

// ProjectDepartmentAssignment records a department being invited to a project
// and the department's response. One row per (project, department) pair;
// re-inviting resets the row rather than adding another.
type ProjectDepartmentAssignment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProjectID       uint       `gorm:"uniqueIndex:idx_project_department;not null" json:"project_id"`
	DepartmentID    uint       `gorm:"uniqueIndex:idx_project_department;not null" json:"department_id"`
	Status          string     `gorm:"size:16;default:pending;index" json:"status"`
	AssignedTeamID  *uint      `json:"assigned_team_id"`
	AssignedByID    uint       `json:"assigned_by_id"`
	ConfirmedByID   *uint      `json:"confirmed_by_id"`
	RejectedByID    *uint      `json:"rejected_by_id"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	RespondedAt     *time.Time `json:"responded_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Project    *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
