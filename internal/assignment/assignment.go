// Package assignment tracks which departments have been invited to a
// project and how each department responded.
package assignment

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/role"
)

// Assignment status values.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Invite creates one pending assignment per department. Re-inviting an
// already-assigned department resets its row to pending and clears the
// previous response. The whole call is one transaction: either every
// department is invited or none are.
func Invite(db *gorm.DB, bus *events.Bus, projectID uint, departmentIDs []uint, actor models.User) ([]models.ProjectDepartmentAssignment, error) {
	if len(departmentIDs) == 0 {
		return nil, apperr.Validationf("assignment: at least one department is required")
	}

	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("assignment: project not found: %d", projectID)
		}
		return nil, fmt.Errorf("assignment: load project %d: %w", projectID, err)
	}

	var out []models.ProjectDepartmentAssignment
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, deptID := range departmentIDs {
			var dept models.Department
			if err := tx.First(&dept, deptID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("assignment: department not found: %d", deptID)
				}
				return fmt.Errorf("assignment: load department %d: %w", deptID, err)
			}

			var a models.ProjectDepartmentAssignment
			err := tx.Where("project_id = ? AND department_id = ?", projectID, deptID).First(&a).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				a = models.ProjectDepartmentAssignment{
					ProjectID:    projectID,
					DepartmentID: deptID,
					Status:       StatusPending,
					AssignedByID: actor.ID,
				}
				if err := tx.Create(&a).Error; err != nil {
					return fmt.Errorf("assignment: create for department %d: %w", deptID, err)
				}
			case err != nil:
				return fmt.Errorf("assignment: load for department %d: %w", deptID, err)
			default:
				// Re-invite: reset to pending and drop the old response.
				if err := tx.Model(&a).Updates(map[string]interface{}{
					"status":           StatusPending,
					"assigned_by_id":   actor.ID,
					"assigned_team_id": nil,
					"confirmed_by_id":  nil,
					"rejected_by_id":   nil,
					"rejection_reason": "",
					"responded_at":     nil,
				}).Error; err != nil {
					return fmt.Errorf("assignment: reset for department %d: %w", deptID, err)
				}
				a.Status = StatusPending
				a.AssignedTeamID = nil
				a.ConfirmedByID = nil
				a.RejectedByID = nil
				a.RejectionReason = ""
				a.RespondedAt = nil
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, a := range out {
		deptID := a.DepartmentID
		bus.Publish(events.Event{
			Type:         events.TypeDepartmentInvited,
			Audience:     events.AudienceDepartmentManager,
			ProjectID:    projectID,
			DepartmentID: deptID,
			ActorID:      actor.ID,
			Title:        "Department invited to project",
			Message:      fmt.Sprintf("Your department has been invited to project %q.", project.Name),
		})
	}
	return out, nil
}

// Accept records the department's acceptance of a pending invitation. Only
// the department's manager may respond, and only while the invitation is
// still pending.
func Accept(db *gorm.DB, bus *events.Bus, projectID, departmentID uint, actor models.User) error {
	a, err := get(db, projectID, departmentID)
	if err != nil {
		return err
	}
	if err := requireManager(db, departmentID, actor); err != nil {
		return err
	}

	now := time.Now()
	res := db.Model(&models.ProjectDepartmentAssignment{}).
		Where("id = ? AND status = ?", a.ID, StatusPending).
		Updates(map[string]interface{}{
			"status":          StatusAccepted,
			"confirmed_by_id": actor.ID,
			"responded_at":    now,
		})
	if res.Error != nil {
		return fmt.Errorf("assignment: accept %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("assignment: invitation for department %d is not pending", departmentID)
	}

	bus.Publish(events.Event{
		Type:         events.TypeInvitationAccepted,
		Audience:     events.AudienceAdmins,
		ProjectID:    projectID,
		DepartmentID: departmentID,
		ActorID:      actor.ID,
		Title:        "Invitation accepted",
		Message:      fmt.Sprintf("Department %d accepted the project invitation.", departmentID),
	})
	return nil
}

// Reject records the department's rejection of a pending invitation. A
// reason is required.
func Reject(db *gorm.DB, bus *events.Bus, projectID, departmentID uint, actor models.User, reason string) error {
	if reason == "" {
		return apperr.Validationf("assignment: rejection reason is required")
	}
	a, err := get(db, projectID, departmentID)
	if err != nil {
		return err
	}
	if err := requireManager(db, departmentID, actor); err != nil {
		return err
	}

	now := time.Now()
	res := db.Model(&models.ProjectDepartmentAssignment{}).
		Where("id = ? AND status = ?", a.ID, StatusPending).
		Updates(map[string]interface{}{
			"status":           StatusRejected,
			"rejected_by_id":   actor.ID,
			"rejection_reason": reason,
			"responded_at":     now,
		})
	if res.Error != nil {
		return fmt.Errorf("assignment: reject %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("assignment: invitation for department %d is not pending", departmentID)
	}

	bus.Publish(events.Event{
		Type:         events.TypeInvitationRejected,
		Audience:     events.AudienceAdmins,
		ProjectID:    projectID,
		DepartmentID: departmentID,
		ActorID:      actor.ID,
		Title:        "Invitation rejected",
		Message:      fmt.Sprintf("Department %d rejected the project invitation: %s", departmentID, reason),
	})
	return nil
}

// AssignTeam sets the team working the assignment. The team must belong to
// the department. Assigning a team to a still-pending invitation confirms
// it via ConfirmByTeamAssignment.
func AssignTeam(db *gorm.DB, bus *events.Bus, projectID, departmentID, teamID uint, actor models.User) error {
	a, err := get(db, projectID, departmentID)
	if err != nil {
		return err
	}
	if actor.Role == string(role.Manager) {
		if err := requireManager(db, departmentID, actor); err != nil {
			return err
		}
	}

	var team models.Team
	if err := db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("assignment: team not found: %d", teamID)
		}
		return fmt.Errorf("assignment: load team %d: %w", teamID, err)
	}
	if team.DepartmentID != departmentID {
		return apperr.Validationf("assignment: team %d does not belong to department %d", teamID, departmentID)
	}

	if err := db.Model(&models.ProjectDepartmentAssignment{}).
		Where("id = ?", a.ID).
		Update("assigned_team_id", teamID).Error; err != nil {
		return fmt.Errorf("assignment: assign team %d: %w", teamID, err)
	}

	if a.Status == StatusPending {
		if err := ConfirmByTeamAssignment(db, a.ID, actor); err != nil {
			return err
		}
	}

	bus.Publish(events.Event{
		Type:         events.TypeTeamAssigned,
		Audience:     events.AudienceDepartmentManager,
		ProjectID:    projectID,
		DepartmentID: departmentID,
		ActorID:      actor.ID,
		Title:        "Team assigned",
		Message:      fmt.Sprintf("Team %q is now assigned to the project.", team.Name),
	})
	return nil
}

// ConfirmByTeamAssignment flips a pending assignment to accepted as a side
// effect of a team being assigned. It is a named transition so the behavior
// is visible and testable rather than buried in AssignTeam.
func ConfirmByTeamAssignment(db *gorm.DB, assignmentID uint, actor models.User) error {
	now := time.Now()
	res := db.Model(&models.ProjectDepartmentAssignment{}).
		Where("id = ? AND status = ?", assignmentID, StatusPending).
		Updates(map[string]interface{}{
			"status":          StatusAccepted,
			"confirmed_by_id": actor.ID,
			"responded_at":    now,
		})
	if res.Error != nil {
		return fmt.Errorf("assignment: confirm by team assignment %d: %w", assignmentID, res.Error)
	}
	// Zero rows means someone responded between our read and this write;
	// the team assignment itself already succeeded.
	return nil
}

// Remove deletes an assignment. This is the only deletion path; responses
// never physically delete rows.
func Remove(db *gorm.DB, projectID, departmentID uint) error {
	res := db.Where("project_id = ? AND department_id = ?", projectID, departmentID).
		Delete(&models.ProjectDepartmentAssignment{})
	if res.Error != nil {
		return fmt.Errorf("assignment: remove (%d, %d): %w", projectID, departmentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("assignment: not found for project %d department %d", projectID, departmentID)
	}
	return nil
}

// get loads the assignment row for a (project, department) pair.
func get(db *gorm.DB, projectID, departmentID uint) (*models.ProjectDepartmentAssignment, error) {
	var a models.ProjectDepartmentAssignment
	err := db.Where("project_id = ? AND department_id = ?", projectID, departmentID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("assignment: not found for project %d department %d", projectID, departmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("assignment: load (%d, %d): %w", projectID, departmentID, err)
	}
	return &a, nil
}

// Get returns the assignment for a (project, department) pair.
func Get(db *gorm.DB, projectID, departmentID uint) (*models.ProjectDepartmentAssignment, error) {
	return get(db, projectID, departmentID)
}

// requireManager checks that the actor manages the department.
func requireManager(db *gorm.DB, departmentID uint, actor models.User) error {
	var dept models.Department
	if err := db.First(&dept, departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("assignment: department not found: %d", departmentID)
		}
		return fmt.Errorf("assignment: load department %d: %w", departmentID, err)
	}
	if dept.ManagerID != actor.ID {
		return apperr.Forbiddenf("assignment: user %d does not manage department %d", actor.ID, departmentID)
	}
	return nil
}
