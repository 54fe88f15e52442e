package models

import "time"

// Warning is a disciplinary record against a user, optionally tied to the
// task that prompted it. It lives outside the task state machines; the only
// mutation after issue is the warned user acknowledging it.
type Warning struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProjectID        uint       `gorm:"index;not null" json:"project_id"`
	WarnedUserID     uint       `gorm:"index;not null" json:"warned_user_id"`
	IssuedByID       uint       `json:"issued_by_id"`
	DepartmentTaskID *uint      `json:"department_task_id"`
	MemberTaskID     *uint      `json:"member_task_id"`
	WarningType      string     `gorm:"size:24;not null" json:"warning_type"`
	Severity         string     `gorm:"size:16;not null;index" json:"severity"`
	Reason           string     `gorm:"type:text;not null" json:"reason"`
	PenaltyAmount    float64    `gorm:"default:0" json:"penalty_amount"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at"`
	AcknowledgedByID *uint      `json:"acknowledged_by_id"`
	CreatedAt        time.Time  `json:"created_at"`
}
