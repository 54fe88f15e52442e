package depttask

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/audit"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

// ListFilters holds optional filters for listing department tasks.
type ListFilters struct {
	ProjectID    uint
	DepartmentID uint
	Status       string
	Priority     string
}

// List returns department tasks matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters, page paging.Page) ([]models.DepartmentTask, paging.Meta, error) {
	q := db.Model(&models.DepartmentTask{})
	if filters.ProjectID != 0 {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.DepartmentID != 0 {
		q = q.Where("department_id = ?", filters.DepartmentID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("depttask: count: %w", err)
	}

	var tasks []models.DepartmentTask
	if err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Normalize().Limit).
		Find(&tasks).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("depttask: list: %w", err)
	}
	return tasks, paging.MetaFor(page, total), nil
}

// UpdateOpts holds administrative field updates.
type UpdateOpts struct {
	Title          *string
	Description    *string
	Priority       *string
	EstimatedHours *float64
	// Force bypasses the status guard. Forced updates are audited.
	Force bool
}

// Update edits task fields. Without Force it refuses terminal tasks; with
// Force it applies regardless of status and writes an audit row.
func Update(db *gorm.DB, id uint, opts UpdateOpts, actor models.User) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if !opts.Force && models.TaskTerminal(task.Status) {
		return apperr.Conflictf("depttask: task %d is %s; pass force to override", id, task.Status)
	}

	updates := map[string]interface{}{}
	if opts.Title != nil {
		if *opts.Title == "" {
			return apperr.Validationf("depttask: title must not be empty")
		}
		updates["title"] = *opts.Title
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if opts.Priority != nil {
		if !validPriority(*opts.Priority) {
			return apperr.Validationf("depttask: invalid priority %q", *opts.Priority)
		}
		updates["priority"] = *opts.Priority
	}
	if opts.EstimatedHours != nil {
		updates["estimated_hours"] = *opts.EstimatedHours
	}
	if len(updates) == 0 {
		return apperr.Validationf("depttask: no fields to update")
	}

	if err := db.Model(&models.DepartmentTask{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("depttask: update %d: %w", id, err)
	}

	if opts.Force {
		audit.Record(db, "department_task", id, "force_update", actor.ID,
			fmt.Sprintf("forced update while status=%s", task.Status))
	}
	return nil
}

// Delete removes a task. Without Force it refuses tasks that have left
// assigned; with Force it deletes regardless and writes an audit row.
// Member tasks under it are deleted with it.
func Delete(db *gorm.DB, id uint, force bool, actor models.User) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if !force && task.Status != models.TaskStatusAssigned {
		return apperr.Conflictf("depttask: task %d is %s; pass force to delete", id, task.Status)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("department_task_id = ?", id).Delete(&models.MemberTask{}).Error; err != nil {
			return fmt.Errorf("depttask: delete member tasks of %d: %w", id, err)
		}
		if err := tx.Delete(&models.DepartmentTask{}, id).Error; err != nil {
			return fmt.Errorf("depttask: delete %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if force {
		audit.Record(db, "department_task", id, "force_delete", actor.ID,
			fmt.Sprintf("forced delete while status=%s", task.Status))
	}
	return nil
}
