// Package overdue is the read-only scanner for tasks whose deadline has
// passed without reaching a terminal state. It only surfaces candidates;
// issuing warnings stays a human decision.
package overdue

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
)

// openStatuses are the non-terminal task statuses.
var openStatuses = []string{
	models.TaskStatusAssigned,
	models.TaskStatusInProgress,
	models.TaskStatusSubmitted,
}

// DepartmentTasks returns overdue department tasks, optionally scoped to
// one department.
func DepartmentTasks(db *gorm.DB, departmentID uint) ([]models.DepartmentTask, error) {
	q := db.Where("status IN ? AND deadline < ?", openStatuses, time.Now())
	if departmentID != 0 {
		q = q.Where("department_id = ?", departmentID)
	}
	var tasks []models.DepartmentTask
	if err := q.Order("deadline ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("overdue: scan department tasks: %w", err)
	}
	return tasks, nil
}

// MemberTasks returns overdue member tasks, optionally scoped to one
// assignee.
func MemberTasks(db *gorm.DB, userID uint) ([]models.MemberTask, error) {
	q := db.Where("status IN ? AND deadline < ?", openStatuses, time.Now())
	if userID != 0 {
		q = q.Where("assignee_id = ?", userID)
	}
	var tasks []models.MemberTask
	if err := q.Order("deadline ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("overdue: scan member tasks: %w", err)
	}
	return tasks, nil
}

// Digest is the aggregate used by the periodic scan.
type Digest struct {
	DepartmentTasks int `json:"department_tasks"`
	MemberTasks     int `json:"member_tasks"`
}

// Scan counts overdue tasks across the whole store.
func Scan(db *gorm.DB) (*Digest, error) {
	dts, err := DepartmentTasks(db, 0)
	if err != nil {
		return nil, err
	}
	mts, err := MemberTasks(db, 0)
	if err != nil {
		return nil, err
	}
	return &Digest{DepartmentTasks: len(dts), MemberTasks: len(mts)}, nil
}
