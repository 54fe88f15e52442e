// Package warning is the disciplinary ledger: warnings issued against users,
// optionally tied to a task, acknowledged by the warned party. Warnings are
// independent of the task state machines; nothing here is ever auto-resolved.
package warning

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

// Warning type values.
const (
	TypeLateSubmission = "late_submission"
	TypePoorQuality    = "poor_quality"
	TypeMissedDeadline = "missed_deadline"
	TypeIncompleteWork = "incomplete_work"
	TypeOther          = "other"
)

// Severity values.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// IssueOpts holds parameters for issuing a warning.
type IssueOpts struct {
	ProjectID        uint
	WarnedUserID     uint
	WarningType      string
	Severity         string
	Reason           string
	PenaltyAmount    float64
	DepartmentTaskID *uint
	MemberTaskID     *uint
}

// Issue creates a warning. There is no uniqueness constraint: a user may
// receive any number of warnings for the same task.
func Issue(db *gorm.DB, bus *events.Bus, opts IssueOpts, issuer models.User) (*models.Warning, error) {
	if !validType(opts.WarningType) {
		return nil, apperr.Validationf("warning: invalid warning type %q", opts.WarningType)
	}
	if !validSeverity(opts.Severity) {
		return nil, apperr.Validationf("warning: invalid severity %q", opts.Severity)
	}
	if opts.Reason == "" {
		return nil, apperr.Validationf("warning: reason is required")
	}
	if opts.PenaltyAmount < 0 {
		return nil, apperr.Validationf("warning: penalty amount must not be negative")
	}
	if opts.DepartmentTaskID != nil && opts.MemberTaskID != nil {
		return nil, apperr.Validationf("warning: reference either a department task or a member task, not both")
	}

	var project models.Project
	if err := db.First(&project, opts.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("warning: project not found: %d", opts.ProjectID)
		}
		return nil, fmt.Errorf("warning: load project %d: %w", opts.ProjectID, err)
	}
	var warned models.User
	if err := db.First(&warned, opts.WarnedUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("warning: user not found: %d", opts.WarnedUserID)
		}
		return nil, fmt.Errorf("warning: load user %d: %w", opts.WarnedUserID, err)
	}
	if opts.DepartmentTaskID != nil {
		var count int64
		if err := db.Model(&models.DepartmentTask{}).Where("id = ?", *opts.DepartmentTaskID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("warning: check department task %d: %w", *opts.DepartmentTaskID, err)
		}
		if count == 0 {
			return nil, apperr.NotFoundf("warning: department task not found: %d", *opts.DepartmentTaskID)
		}
	}
	if opts.MemberTaskID != nil {
		var count int64
		if err := db.Model(&models.MemberTask{}).Where("id = ?", *opts.MemberTaskID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("warning: check member task %d: %w", *opts.MemberTaskID, err)
		}
		if count == 0 {
			return nil, apperr.NotFoundf("warning: member task not found: %d", *opts.MemberTaskID)
		}
	}

	w := models.Warning{
		ProjectID:        opts.ProjectID,
		WarnedUserID:     opts.WarnedUserID,
		IssuedByID:       issuer.ID,
		DepartmentTaskID: opts.DepartmentTaskID,
		MemberTaskID:     opts.MemberTaskID,
		WarningType:      opts.WarningType,
		Severity:         opts.Severity,
		Reason:           opts.Reason,
		PenaltyAmount:    opts.PenaltyAmount,
	}
	if err := db.Create(&w).Error; err != nil {
		return nil, fmt.Errorf("warning: issue: %w", err)
	}

	bus.Publish(events.Event{
		Type:       events.TypeWarningIssued,
		Audience:   events.AudienceUsers,
		Recipients: []uint{opts.WarnedUserID},
		ProjectID:  opts.ProjectID,
		ActorID:    issuer.ID,
		Title:      "Warning issued",
		Message:    fmt.Sprintf("You have received a %s warning (%s): %s", opts.Severity, opts.WarningType, opts.Reason),
	})
	return &w, nil
}

// Acknowledge records the warned user's acknowledgement. One-way: once set,
// a second call is a conflict and the original stamp survives.
func Acknowledge(db *gorm.DB, id uint, actor models.User) error {
	var w models.Warning
	if err := db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("warning: not found: %d", id)
		}
		return fmt.Errorf("warning: get %d: %w", id, err)
	}
	if w.WarnedUserID != actor.ID {
		return apperr.Forbiddenf("warning: user %d is not the warned user of warning %d", actor.ID, id)
	}

	now := time.Now()
	res := db.Model(&models.Warning{}).
		Where("id = ? AND acknowledged_at IS NULL", id).
		Updates(map[string]interface{}{
			"acknowledged_at":    now,
			"acknowledged_by_id": actor.ID,
		})
	if res.Error != nil {
		return fmt.Errorf("warning: acknowledge %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("warning: %d is already acknowledged", id)
	}
	return nil
}

// Get retrieves a warning by ID.
func Get(db *gorm.DB, id uint) (*models.Warning, error) {
	var w models.Warning
	if err := db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("warning: not found: %d", id)
		}
		return nil, fmt.Errorf("warning: get %d: %w", id, err)
	}
	return &w, nil
}

// ListFilters holds optional filters for listing warnings.
type ListFilters struct {
	ProjectID    uint
	WarnedUserID uint
	Severity     string
}

// List returns warnings matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters, page paging.Page) ([]models.Warning, paging.Meta, error) {
	q := db.Model(&models.Warning{})
	if filters.ProjectID != 0 {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.WarnedUserID != 0 {
		q = q.Where("warned_user_id = ?", filters.WarnedUserID)
	}
	if filters.Severity != "" {
		q = q.Where("severity = ?", filters.Severity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("warning: count: %w", err)
	}

	var warnings []models.Warning
	if err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Normalize().Limit).
		Find(&warnings).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("warning: list: %w", err)
	}
	return warnings, paging.MetaFor(page, total), nil
}

// validType reports whether t is a known warning type.
func validType(t string) bool {
	switch t {
	case TypeLateSubmission, TypePoorQuality, TypeMissedDeadline, TypeIncompleteWork, TypeOther:
		return true
	}
	return false
}

// validSeverity reports whether s is a known severity.
func validSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
