// Package depttask owns the department-task state machine: work items the
// administrator hands to a department under an accepted assignment.
//
// States move assigned → in_progress → submitted → approved, with
// assigned → rejected and submitted → in_progress (rejected submission) as
// the side branches. Every transition is a single conditional UPDATE keyed
// on the source status, so concurrent callers cannot both win.
package depttask

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/assignment"
	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
)

// ValidTransitions maps each status to its valid next statuses.
var ValidTransitions = map[string][]string{
	models.TaskStatusAssigned:   {models.TaskStatusInProgress, models.TaskStatusRejected},
	models.TaskStatusInProgress: {models.TaskStatusSubmitted},
	models.TaskStatusSubmitted:  {models.TaskStatusApproved, models.TaskStatusInProgress},
}

// CreateOpts holds parameters for creating a department task.
type CreateOpts struct {
	ProjectID      uint
	DepartmentID   uint
	Title          string
	Description    string
	Priority       string // low, medium, high, critical
	Deadline       time.Time
	EstimatedHours float64
}

// Create hands a new task to a department. The (project, department)
// assignment must already be accepted.
func Create(db *gorm.DB, bus *events.Bus, opts CreateOpts, actor models.User) (*models.DepartmentTask, error) {
	if opts.Title == "" {
		return nil, apperr.Validationf("depttask: title is required")
	}
	if opts.Deadline.IsZero() {
		return nil, apperr.Validationf("depttask: deadline is required")
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !validPriority(opts.Priority) {
		return nil, apperr.Validationf("depttask: invalid priority %q", opts.Priority)
	}

	a, err := assignment.Get(db, opts.ProjectID, opts.DepartmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != assignment.StatusAccepted {
		return nil, apperr.Conflictf("depttask: department %d has not accepted project %d (status %s)",
			opts.DepartmentID, opts.ProjectID, a.Status)
	}

	task := models.DepartmentTask{
		ProjectID:      opts.ProjectID,
		DepartmentID:   opts.DepartmentID,
		Title:          opts.Title,
		Description:    opts.Description,
		Priority:       opts.Priority,
		Deadline:       opts.Deadline,
		EstimatedHours: opts.EstimatedHours,
		Status:         models.TaskStatusAssigned,
		AssignedByID:   actor.ID,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("depttask: create: %w", err)
	}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskCreated,
		Audience:     events.AudienceDepartmentManager,
		ProjectID:    task.ProjectID,
		DepartmentID: task.DepartmentID,
		TaskID:       task.ID,
		ActorID:      actor.ID,
		Title:        "New department task",
		Message:      fmt.Sprintf("Task %q has been assigned to your department.", task.Title),
	})
	return &task, nil
}

// Accept moves an assigned task to in_progress. Only the manager of the
// owning department may accept.
func Accept(db *gorm.DB, bus *events.Bus, id uint, actor models.User) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := requireManager(db, task.DepartmentID, actor); err != nil {
		return err
	}

	now := time.Now()
	res := db.Model(&models.DepartmentTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusAssigned).
		Updates(map[string]interface{}{
			"status":         models.TaskStatusInProgress,
			"accepted_by_id": actor.ID,
			"accepted_at":    now,
		})
	if res.Error != nil {
		return fmt.Errorf("depttask: accept %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("depttask: task %d is not in %s", id, models.TaskStatusAssigned)
	}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskAccepted,
		Audience:     events.AudienceAdmins,
		ProjectID:    task.ProjectID,
		DepartmentID: task.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Department task accepted",
		Message:      fmt.Sprintf("Task %q was accepted and is now in progress.", task.Title),
	})
	return nil
}

// Reject declines an assigned task. A reason is required and the rejection
// is terminal.
func Reject(db *gorm.DB, bus *events.Bus, id uint, actor models.User, reason string) error {
	if reason == "" {
		return apperr.Validationf("depttask: rejection reason is required")
	}
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := requireManager(db, task.DepartmentID, actor); err != nil {
		return err
	}

	now := time.Now()
	res := db.Model(&models.DepartmentTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusAssigned).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusRejected,
			"rejected_by_id":   actor.ID,
			"rejected_at":      now,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("depttask: reject %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("depttask: task %d is not in %s", id, models.TaskStatusAssigned)
	}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskRejected,
		Audience:     events.AudienceAdmins,
		ProjectID:    task.ProjectID,
		DepartmentID: task.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Department task rejected",
		Message:      fmt.Sprintf("Task %q was rejected: %s", task.Title, reason),
	})
	return nil
}

// UpdateProgress records progress on an in-progress task. Progress and
// status are deliberately decoupled: reaching 100 does not submit the task.
func UpdateProgress(db *gorm.DB, id uint, progress int, actualHours *float64, actor models.User) error {
	if progress < 0 || progress > 100 {
		return apperr.Validationf("depttask: progress must be between 0 and 100, got %d", progress)
	}
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := requireManager(db, task.DepartmentID, actor); err != nil {
		return err
	}

	updates := map[string]interface{}{"progress": progress}
	if actualHours != nil {
		if *actualHours < 0 {
			return apperr.Validationf("depttask: actual hours must not be negative")
		}
		updates["actual_hours"] = *actualHours
	}

	res := db.Model(&models.DepartmentTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("depttask: update progress %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("depttask: task %d is not in %s", id, models.TaskStatusInProgress)
	}
	return nil
}

// Submit hands an in-progress task up for administrator review. Every
// member task under it must be settled (approved or rejected) first.
func Submit(db *gorm.DB, bus *events.Bus, id uint, actor models.User, notes string) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := requireManager(db, task.DepartmentID, actor); err != nil {
		return err
	}

	var open int64
	if err := db.Model(&models.MemberTask{}).
		Where("department_task_id = ? AND status NOT IN ?", id,
			[]string{models.TaskStatusApproved, models.TaskStatusRejected}).
		Count(&open).Error; err != nil {
		return fmt.Errorf("depttask: count open member tasks of %d: %w", id, err)
	}
	if open > 0 {
		return apperr.Conflictf("depttask: task %d still has %d unsettled member tasks", id, open)
	}

	now := time.Now()
	res := db.Model(&models.DepartmentTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusInProgress).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusSubmitted,
			"submitted_by_id":  actor.ID,
			"submitted_at":     now,
			"submission_notes": notes,
		})
	if res.Error != nil {
		return fmt.Errorf("depttask: submit %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("depttask: task %d is not in %s", id, models.TaskStatusInProgress)
	}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskSubmitted,
		Audience:     events.AudienceAdmins,
		ProjectID:    task.ProjectID,
		DepartmentID: task.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Department task submitted",
		Message:      fmt.Sprintf("Task %q has been submitted for approval.", task.Title),
	})
	return nil
}

// Approve completes a submitted task. Terminal.
func Approve(db *gorm.DB, bus *events.Bus, id uint, actor models.User, notes string) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}

	now := time.Now()
	res := db.Model(&models.DepartmentTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusSubmitted).
		Updates(map[string]interface{}{
			"status":         models.TaskStatusApproved,
			"approved_by_id": actor.ID,
			"completed_at":   now,
			"approval_notes": notes,
		})
	if res.Error != nil {
		return fmt.Errorf("depttask: approve %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("depttask: task %d is not in %s", id, models.TaskStatusSubmitted)
	}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskApproved,
		Audience:     events.AudienceDepartmentManager,
		ProjectID:    task.ProjectID,
		DepartmentID: task.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Department task approved",
		Message:      fmt.Sprintf("Task %q has been approved.", task.Title),
	})
	return nil
}

// RejectSubmission sends a submitted task back to in_progress, clearing the
// submission stamps. Notes are required so the department knows what to fix.
func RejectSubmission(db *gorm.DB, bus *events.Bus, id uint, actor models.User, notes string) error {
	if notes == "" {
		return apperr.Validationf("depttask: rejection notes are required")
	}
	task, err := Get(db, id)
	if err != nil {
		return err
	}

	res := db.Model(&models.DepartmentTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusSubmitted).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusInProgress,
			"submitted_by_id":  nil,
			"submitted_at":     nil,
			"approval_notes":   notes,
		})
	if res.Error != nil {
		return fmt.Errorf("depttask: reject submission %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("depttask: task %d is not in %s", id, models.TaskStatusSubmitted)
	}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskReturned,
		Audience:     events.AudienceDepartmentManager,
		ProjectID:    task.ProjectID,
		DepartmentID: task.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Submission rejected",
		Message:      fmt.Sprintf("Task %q was sent back: %s", task.Title, notes),
	})
	return nil
}

// Get retrieves a department task by ID.
func Get(db *gorm.DB, id uint) (*models.DepartmentTask, error) {
	var task models.DepartmentTask
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("depttask: not found: %d", id)
		}
		return nil, fmt.Errorf("depttask: get %d: %w", id, err)
	}
	return &task, nil
}

// requireManager checks that the actor manages the department.
func requireManager(db *gorm.DB, departmentID uint, actor models.User) error {
	var dept models.Department
	if err := db.First(&dept, departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("depttask: department not found: %d", departmentID)
		}
		return fmt.Errorf("depttask: load department %d: %w", departmentID, err)
	}
	if dept.ManagerID != actor.ID {
		return apperr.Forbiddenf("depttask: user %d does not manage department %d", actor.ID, departmentID)
	}
	return nil
}

// validPriority reports whether p is a known priority value.
func validPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return true
	}
	return false
}

// IsValidTransition checks whether a status transition is allowed.
func IsValidTransition(from, to string) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}
