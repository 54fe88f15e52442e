// Package report is the append-only progress report log. Reports attach to
// a project and optionally to one department task or member task; they have
// no state machine.
//
// Update and Delete perform no ownership check themselves: the API layer is
// responsible for verifying the caller is the reporter (or an admin) before
// invoking them.
package report

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

// Report type values.
const (
	TypeDaily      = "daily"
	TypeWeekly     = "weekly"
	TypeMonthly    = "monthly"
	TypeCompletion = "completion"
	TypeIssue      = "issue"
)

// CreateOpts holds parameters for filing a report.
type CreateOpts struct {
	ProjectID        uint
	DepartmentTaskID *uint
	MemberTaskID     *uint
	ReportType       string
	Title            string
	Content          string
	Progress         *int
	Issues           string
	Attachments      string
}

// Create files a report. Scope references must exist; no workflow state is
// checked.
func Create(db *gorm.DB, opts CreateOpts, reporter models.User) (*models.Report, error) {
	if opts.Title == "" {
		return nil, apperr.Validationf("report: title is required")
	}
	if !validType(opts.ReportType) {
		return nil, apperr.Validationf("report: invalid report type %q", opts.ReportType)
	}
	if opts.Progress != nil && (*opts.Progress < 0 || *opts.Progress > 100) {
		return nil, apperr.Validationf("report: progress must be between 0 and 100, got %d", *opts.Progress)
	}

	var project models.Project
	if err := db.First(&project, opts.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("report: project not found: %d", opts.ProjectID)
		}
		return nil, fmt.Errorf("report: load project %d: %w", opts.ProjectID, err)
	}
	if opts.DepartmentTaskID != nil {
		var count int64
		if err := db.Model(&models.DepartmentTask{}).Where("id = ?", *opts.DepartmentTaskID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("report: check department task %d: %w", *opts.DepartmentTaskID, err)
		}
		if count == 0 {
			return nil, apperr.NotFoundf("report: department task not found: %d", *opts.DepartmentTaskID)
		}
	}
	if opts.MemberTaskID != nil {
		var count int64
		if err := db.Model(&models.MemberTask{}).Where("id = ?", *opts.MemberTaskID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("report: check member task %d: %w", *opts.MemberTaskID, err)
		}
		if count == 0 {
			return nil, apperr.NotFoundf("report: member task not found: %d", *opts.MemberTaskID)
		}
	}

	r := models.Report{
		ProjectID:        opts.ProjectID,
		DepartmentTaskID: opts.DepartmentTaskID,
		MemberTaskID:     opts.MemberTaskID,
		ReporterID:       reporter.ID,
		ReportType:       opts.ReportType,
		Title:            opts.Title,
		Content:          opts.Content,
		Progress:         opts.Progress,
		Issues:           opts.Issues,
		Attachments:      opts.Attachments,
	}
	if err := db.Create(&r).Error; err != nil {
		return nil, fmt.Errorf("report: create: %w", err)
	}
	return &r, nil
}

// Get retrieves a report by ID.
func Get(db *gorm.DB, id uint) (*models.Report, error) {
	var r models.Report
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("report: not found: %d", id)
		}
		return nil, fmt.Errorf("report: get %d: %w", id, err)
	}
	return &r, nil
}

// ListFilters selects which reports to return. Exactly the most specific
// non-zero reference is applied.
type ListFilters struct {
	ProjectID        uint
	DepartmentTaskID uint
	MemberTaskID     uint
	ReporterID       uint
	ReportType       string
}

// List returns reports matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters, page paging.Page) ([]models.Report, paging.Meta, error) {
	q := db.Model(&models.Report{})
	switch {
	case filters.MemberTaskID != 0:
		q = q.Where("member_task_id = ?", filters.MemberTaskID)
	case filters.DepartmentTaskID != 0:
		q = q.Where("department_task_id = ?", filters.DepartmentTaskID)
	case filters.ProjectID != 0:
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.ReporterID != 0 {
		q = q.Where("reporter_id = ?", filters.ReporterID)
	}
	if filters.ReportType != "" {
		q = q.Where("report_type = ?", filters.ReportType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("report: count: %w", err)
	}

	var reports []models.Report
	if err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Normalize().Limit).
		Find(&reports).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("report: list: %w", err)
	}
	return reports, paging.MetaFor(page, total), nil
}

// UpdateOpts holds the mutable report fields. The type and scope of a
// report never change after filing.
type UpdateOpts struct {
	Content  *string
	Progress *int
	Issues   *string
}

// Update edits a report's content fields. Callers must have verified
// ownership first.
func Update(db *gorm.DB, id uint, opts UpdateOpts) error {
	if _, err := Get(db, id); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if opts.Content != nil {
		updates["content"] = *opts.Content
	}
	if opts.Progress != nil {
		if *opts.Progress < 0 || *opts.Progress > 100 {
			return apperr.Validationf("report: progress must be between 0 and 100, got %d", *opts.Progress)
		}
		updates["progress"] = *opts.Progress
	}
	if opts.Issues != nil {
		updates["issues"] = *opts.Issues
	}
	if len(updates) == 0 {
		return apperr.Validationf("report: no fields to update")
	}

	if err := db.Model(&models.Report{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("report: update %d: %w", id, err)
	}
	return nil
}

// Delete removes a report. Callers must have verified ownership first.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Report{}, id)
	if res.Error != nil {
		return fmt.Errorf("report: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("report: not found: %d", id)
	}
	return nil
}

// validType reports whether t is a known report type.
func validType(t string) bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeCompletion, TypeIssue:
		return true
	}
	return false
}
