package models

import "time"

// Report is a free-form progress report attached to a project and optionally
// to one department task or member task. Append-only: updates may touch
// content, progress and issues but never the type or the scope.
type Report struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProjectID        uint      `gorm:"index;not null" json:"project_id"`
	DepartmentTaskID *uint     `gorm:"index" json:"department_task_id"`
	MemberTaskID     *uint     `gorm:"index" json:"member_task_id"`
	ReporterID       uint      `gorm:"index;not null" json:"reporter_id"`
	ReportType       string    `gorm:"size:16;not null" json:"report_type"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Content          string    `gorm:"type:text" json:"content"`
	Progress         *int      `json:"progress"`
	Issues           string    `gorm:"type:text" json:"issues"`
	Attachments      string    `gorm:"type:text" json:"attachments"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
