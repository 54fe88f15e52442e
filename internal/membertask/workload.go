package membertask

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

// Workload summarizes a user's open (non-terminal) tasks, used by
// delegation UIs to show current load before assigning more work.
type Workload struct {
	UserID          uint           `json:"user_id"`
	OpenTasks       int64          `json:"open_tasks"`
	ByStatus        map[string]int `json:"by_status"`
	EstimatedHours  float64        `json:"estimated_hours"`
	ActualHours     float64        `json:"actual_hours"`
	AverageProgress float64        `json:"average_progress"`
}

// GetWorkload aggregates the user's open tasks.
func GetWorkload(db *gorm.DB, userID uint) (*Workload, error) {
	open := []string{models.TaskStatusAssigned, models.TaskStatusInProgress, models.TaskStatusSubmitted}

	type row struct {
		Status   string
		Count    int
		EstSum   float64
		ActSum   float64
		ProgSum  float64
	}
	var rows []row
	if err := db.Model(&models.MemberTask{}).
		Select("status, COUNT(*) as count, SUM(estimated_hours) as est_sum, SUM(actual_hours) as act_sum, SUM(progress) as prog_sum").
		Where("assignee_id = ? AND status IN ?", userID, open).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("membertask: workload of %d: %w", userID, err)
	}

	w := Workload{UserID: userID, ByStatus: make(map[string]int)}
	var progSum float64
	for _, r := range rows {
		w.ByStatus[r.Status] = r.Count
		w.OpenTasks += int64(r.Count)
		w.EstimatedHours += r.EstSum
		w.ActualHours += r.ActSum
		progSum += r.ProgSum
	}
	if w.OpenTasks > 0 {
		w.AverageProgress = progSum / float64(w.OpenTasks)
	}
	return &w, nil
}

// ListFilters holds optional filters for listing member tasks.
type ListFilters struct {
	DepartmentTaskID uint
	AssigneeID       uint
	Status           string
}

// List returns member tasks matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters, page paging.Page) ([]models.MemberTask, paging.Meta, error) {
	q := db.Model(&models.MemberTask{})
	if filters.DepartmentTaskID != 0 {
		q = q.Where("department_task_id = ?", filters.DepartmentTaskID)
	}
	if filters.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", filters.AssigneeID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("membertask: count: %w", err)
	}

	var tasks []models.MemberTask
	if err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Normalize().Limit).
		Find(&tasks).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("membertask: list: %w", err)
	}
	return tasks, paging.MetaFor(page, total), nil
}
