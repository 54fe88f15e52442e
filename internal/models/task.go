package models

import "time"

// Task status values shared by DepartmentTask and MemberTask.
const (
	TaskStatusAssigned   = "assigned"
	TaskStatusInProgress = "in_progress"
	TaskStatusSubmitted  = "submitted"
	TaskStatusApproved   = "approved"
	TaskStatusRejected   = "rejected"
)

// Task priority values.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// TaskTerminal reports whether a status admits no further transitions.
// A rejected submission reopens work before the task ever reaches rejected,
// so both approved and rejected are final here.
func TaskTerminal(status string) bool {
	return status == TaskStatusApproved || status == TaskStatusRejected
}

// DepartmentTask is a unit of work an administrator hands to a department.
// It may only exist under an accepted project-department assignment.
type DepartmentTask struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProjectID       uint       `gorm:"index;not null" json:"project_id"`
	DepartmentID    uint       `gorm:"index;not null" json:"department_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Priority        string     `gorm:"size:16;default:medium" json:"priority"`
	Deadline        time.Time  `gorm:"not null" json:"deadline"`
	EstimatedHours  float64    `gorm:"default:0" json:"estimated_hours"`
	ActualHours     float64    `gorm:"default:0" json:"actual_hours"`
	Progress        int        `gorm:"default:0" json:"progress"`
	Status          string     `gorm:"size:16;default:assigned;index" json:"status"`
	AssignedByID    uint       `json:"assigned_by_id"`
	AcceptedByID    *uint      `json:"accepted_by_id"`
	SubmittedByID   *uint      `json:"submitted_by_id"`
	ApprovedByID    *uint      `json:"approved_by_id"`
	RejectedByID    *uint      `json:"rejected_by_id"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	SubmissionNotes string     `gorm:"type:text" json:"submission_notes"`
	ApprovalNotes   string     `gorm:"type:text" json:"approval_notes"`
	AcceptedAt      *time.Time `json:"accepted_at"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	RejectedAt      *time.Time `json:"rejected_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	MemberTasks []MemberTask `gorm:"foreignKey:DepartmentTaskID" json:"member_tasks,omitempty"`
}

// MemberTask is a unit of work a department manager delegates to an
// individual, parented to exactly one DepartmentTask.
type MemberTask struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	DepartmentTaskID uint       `gorm:"index;not null" json:"department_task_id"`
	AssigneeID       uint       `gorm:"index;not null" json:"assignee_id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Priority         string     `gorm:"size:16;default:medium" json:"priority"`
	Deadline         time.Time  `gorm:"not null" json:"deadline"`
	EstimatedHours   float64    `gorm:"default:0" json:"estimated_hours"`
	ActualHours      float64    `gorm:"default:0" json:"actual_hours"`
	Progress         int        `gorm:"default:0" json:"progress"`
	Status           string     `gorm:"size:16;default:assigned;index" json:"status"`
	AssignedByID     uint       `json:"assigned_by_id"`
	SubmittedByID    *uint      `json:"submitted_by_id"`
	ApprovedByID     *uint      `json:"approved_by_id"`
	RejectedByID     *uint      `json:"rejected_by_id"`
	RejectionReason  string     `gorm:"type:text" json:"rejection_reason"`
	SubmissionNotes  string     `gorm:"type:text" json:"submission_notes"`
	ApprovalNotes    string     `gorm:"type:text" json:"approval_notes"`
	StartedAt        *time.Time `json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	RejectedAt       *time.Time `json:"rejected_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	DepartmentTask *DepartmentTask `gorm:"foreignKey:DepartmentTaskID" json:"department_task,omitempty"`
	Assignee       *User           `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
