// Package membertask owns the member-task state machine: work a department
// manager delegates to an individual under a department task. The machine
// mirrors depttask one level down, with assignee/manager in place of
// manager/admin.
package membertask

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
)

// ValidTransitions maps each status to its valid next statuses.
var ValidTransitions = map[string][]string{
	models.TaskStatusAssigned:   {models.TaskStatusInProgress, models.TaskStatusRejected},
	models.TaskStatusInProgress: {models.TaskStatusSubmitted},
	models.TaskStatusSubmitted:  {models.TaskStatusApproved, models.TaskStatusInProgress},
}

// CreateOpts holds parameters for delegating a member task.
type CreateOpts struct {
	DepartmentTaskID uint
	AssigneeID       uint
	Title            string
	Description      string
	Priority         string
	Deadline         time.Time
	EstimatedHours   float64
}

// Create delegates a piece of a department task to an individual. The
// parent must exist and not be terminal, and the deadline must not exceed
// the parent's.
func Create(db *gorm.DB, bus *events.Bus, opts CreateOpts, actor models.User) (*models.MemberTask, error) {
	if opts.Title == "" {
		return nil, apperr.Validationf("membertask: title is required")
	}
	if opts.Deadline.IsZero() {
		return nil, apperr.Validationf("membertask: deadline is required")
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !validPriority(opts.Priority) {
		return nil, apperr.Validationf("membertask: invalid priority %q", opts.Priority)
	}

	parent, err := getParent(db, opts.DepartmentTaskID)
	if err != nil {
		return nil, err
	}
	if models.TaskTerminal(parent.Status) {
		return nil, apperr.Conflictf("membertask: parent task %d is %s", parent.ID, parent.Status)
	}
	if err := requireManager(db, parent.DepartmentID, actor); err != nil {
		return nil, err
	}
	if opts.Deadline.After(parent.Deadline) {
		return nil, apperr.Validationf("membertask: deadline exceeds parent task deadline (%s)",
			parent.Deadline.Format(time.RFC3339))
	}

	var assignee models.User
	if err := db.First(&assignee, opts.AssigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("membertask: assignee not found: %d", opts.AssigneeID)
		}
		return nil, fmt.Errorf("membertask: load assignee %d: %w", opts.AssigneeID, err)
	}

	task := models.MemberTask{
		DepartmentTaskID: opts.DepartmentTaskID,
		AssigneeID:       opts.AssigneeID,
		Title:            opts.Title,
		Description:      opts.Description,
		Priority:         opts.Priority,
		Deadline:         opts.Deadline,
		EstimatedHours:   opts.EstimatedHours,
		Status:           models.TaskStatusAssigned,
		AssignedByID:     actor.ID,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("membertask: create: %w", err)
	}

	bus.Publish(events.Event{
		Type:         events.TypeMemberTaskCreated,
		Audience:     events.AudienceUsers,
		Recipients:   []uint{opts.AssigneeID},
		ProjectID:    parent.ProjectID,
		DepartmentID: parent.DepartmentID,
		TaskID:       task.ID,
		ActorID:      actor.ID,
		Title:        "New task assigned to you",
		Message:      fmt.Sprintf("You have been assigned %q.", task.Title),
	})
	return &task, nil
}

// Start moves an assigned task to in_progress. Only the assignee may start.
func Start(db *gorm.DB, bus *events.Bus, id uint, actor models.User) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if task.AssigneeID != actor.ID {
		return apperr.Forbiddenf("membertask: user %d is not the assignee of task %d", actor.ID, id)
	}

	now := time.Now()
	res := db.Model(&models.MemberTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusAssigned).
		Updates(map[string]interface{}{
			"status":     models.TaskStatusInProgress,
			"started_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("membertask: start %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("membertask: task %d is not in %s", id, models.TaskStatusAssigned)
	}

	parent, err := getParent(db, task.DepartmentTaskID)
	if err != nil {
		return err
	}
	bus.Publish(events.Event{
		Type:         events.TypeMemberTaskStarted,
		Audience:     events.AudienceDepartmentManager,
		ProjectID:    parent.ProjectID,
		DepartmentID: parent.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Member task started",
		Message:      fmt.Sprintf("Work on %q has started.", task.Title),
	})
	return nil
}

// UpdateProgress records progress on an in-progress task. Only the assignee
// may report progress, and reaching 100 does not submit the task.
func UpdateProgress(db *gorm.DB, id uint, progress int, actualHours *float64, actor models.User) error {
	if progress < 0 || progress > 100 {
		return apperr.Validationf("membertask: progress must be between 0 and 100, got %d", progress)
	}
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if task.AssigneeID != actor.ID {
		return apperr.Forbiddenf("membertask: user %d is not the assignee of task %d", actor.ID, id)
	}

	updates := map[string]interface{}{"progress": progress}
	if actualHours != nil {
		if *actualHours < 0 {
			return apperr.Validationf("membertask: actual hours must not be negative")
		}
		updates["actual_hours"] = *actualHours
	}

	res := db.Model(&models.MemberTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("membertask: update progress %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("membertask: task %d is not in %s", id, models.TaskStatusInProgress)
	}
	return nil
}

// Submit hands the task to the department manager for review.
func Submit(db *gorm.DB, bus *events.Bus, id uint, actor models.User, notes string) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	if task.AssigneeID != actor.ID {
		return apperr.Forbiddenf("membertask: user %d is not the assignee of task %d", actor.ID, id)
	}

	now := time.Now()
	res := db.Model(&models.MemberTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusInProgress).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusSubmitted,
			"submitted_by_id":  actor.ID,
			"submitted_at":     now,
			"submission_notes": notes,
		})
	if res.Error != nil {
		return fmt.Errorf("membertask: submit %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("membertask: task %d is not in %s", id, models.TaskStatusInProgress)
	}

	parent, err := getParent(db, task.DepartmentTaskID)
	if err != nil {
		return err
	}
	bus.Publish(events.Event{
		Type:         events.TypeMemberTaskSubmitted,
		Audience:     events.AudienceDepartmentManager,
		ProjectID:    parent.ProjectID,
		DepartmentID: parent.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Member task submitted",
		Message:      fmt.Sprintf("%q has been submitted for review.", task.Title),
	})
	return nil
}

// Approve completes a submitted task. Only the manager of the parent's
// department may approve. Terminal.
func Approve(db *gorm.DB, bus *events.Bus, id uint, actor models.User, notes string) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	parent, err := getParent(db, task.DepartmentTaskID)
	if err != nil {
		return err
	}
	if err := requireManager(db, parent.DepartmentID, actor); err != nil {
		return err
	}

	now := time.Now()
	res := db.Model(&models.MemberTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusSubmitted).
		Updates(map[string]interface{}{
			"status":         models.TaskStatusApproved,
			"approved_by_id": actor.ID,
			"completed_at":   now,
			"approval_notes": notes,
		})
	if res.Error != nil {
		return fmt.Errorf("membertask: approve %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("membertask: task %d is not in %s", id, models.TaskStatusSubmitted)
	}

	bus.Publish(events.Event{
		Type:         events.TypeMemberTaskApproved,
		Audience:     events.AudienceUsers,
		Recipients:   []uint{task.AssigneeID},
		ProjectID:    parent.ProjectID,
		DepartmentID: parent.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Task approved",
		Message:      fmt.Sprintf("Your task %q has been approved.", task.Title),
	})
	return nil
}

// RejectSubmission sends a submitted task back to in_progress. Notes are
// required so the assignee knows what to fix.
func RejectSubmission(db *gorm.DB, bus *events.Bus, id uint, actor models.User, notes string) error {
	if notes == "" {
		return apperr.Validationf("membertask: rejection notes are required")
	}
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	parent, err := getParent(db, task.DepartmentTaskID)
	if err != nil {
		return err
	}
	if err := requireManager(db, parent.DepartmentID, actor); err != nil {
		return err
	}

	res := db.Model(&models.MemberTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusSubmitted).
		Updates(map[string]interface{}{
			"status":          models.TaskStatusInProgress,
			"submitted_by_id": nil,
			"submitted_at":    nil,
			"approval_notes":  notes,
		})
	if res.Error != nil {
		return fmt.Errorf("membertask: reject submission %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("membertask: task %d is not in %s", id, models.TaskStatusSubmitted)
	}

	bus.Publish(events.Event{
		Type:         events.TypeMemberTaskReturned,
		Audience:     events.AudienceUsers,
		Recipients:   []uint{task.AssigneeID},
		ProjectID:    parent.ProjectID,
		DepartmentID: parent.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Submission rejected",
		Message:      fmt.Sprintf("Your task %q was sent back: %s", task.Title, notes),
	})
	return nil
}

// Reassign hands the task to a new assignee from any status. The task
// restarts: status returns to assigned, progress resets and the start stamp
// is cleared. Both the old and new assignee are notified.
func Reassign(db *gorm.DB, bus *events.Bus, id, newAssigneeID uint, actor models.User) error {
	task, err := Get(db, id)
	if err != nil {
		return err
	}
	parent, err := getParent(db, task.DepartmentTaskID)
	if err != nil {
		return err
	}
	if err := requireManager(db, parent.DepartmentID, actor); err != nil {
		return err
	}

	var assignee models.User
	if err := db.First(&assignee, newAssigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("membertask: assignee not found: %d", newAssigneeID)
		}
		return fmt.Errorf("membertask: load assignee %d: %w", newAssigneeID, err)
	}

	if err := db.Model(&models.MemberTask{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusAssigned,
			"assignee_id":      newAssigneeID,
			"assigned_by_id":   actor.ID,
			"progress":         0,
			"started_at":       nil,
			"submitted_by_id":  nil,
			"submitted_at":     nil,
			"submission_notes": "",
		}).Error; err != nil {
		return fmt.Errorf("membertask: reassign %d: %w", id, err)
	}

	recipients := []uint{newAssigneeID}
	if task.AssigneeID != newAssigneeID {
		recipients = append(recipients, task.AssigneeID)
	}
	bus.Publish(events.Event{
		Type:         events.TypeMemberTaskReassigned,
		Audience:     events.AudienceUsers,
		Recipients:   recipients,
		ProjectID:    parent.ProjectID,
		DepartmentID: parent.DepartmentID,
		TaskID:       id,
		ActorID:      actor.ID,
		Title:        "Task reassigned",
		Message:      fmt.Sprintf("Task %q has been reassigned to %s and restarted.", task.Title, assignee.Name),
	})
	return nil
}

// Get retrieves a member task by ID.
func Get(db *gorm.DB, id uint) (*models.MemberTask, error) {
	var task models.MemberTask
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("membertask: not found: %d", id)
		}
		return nil, fmt.Errorf("membertask: get %d: %w", id, err)
	}
	return &task, nil
}

// getParent loads the parent department task.
func getParent(db *gorm.DB, departmentTaskID uint) (*models.DepartmentTask, error) {
	var parent models.DepartmentTask
	if err := db.First(&parent, departmentTaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("membertask: department task not found: %d", departmentTaskID)
		}
		return nil, fmt.Errorf("membertask: load department task %d: %w", departmentTaskID, err)
	}
	return &parent, nil
}

// requireManager checks that the actor manages the department.
func requireManager(db *gorm.DB, departmentID uint, actor models.User) error {
	var dept models.Department
	if err := db.First(&dept, departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("membertask: department not found: %d", departmentID)
		}
		return fmt.Errorf("membertask: load department %d: %w", departmentID, err)
	}
	if dept.ManagerID != actor.ID {
		return apperr.Forbiddenf("membertask: user %d does not manage department %d", actor.ID, departmentID)
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
