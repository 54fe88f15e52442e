package assignment

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
)

// DepartmentRow is one department's standing on a project.
type DepartmentRow struct {
	models.ProjectDepartmentAssignment
	DepartmentName string `json:"department_name"`
	ManagerID      uint   `json:"manager_id"`
	MemberCount    int64  `json:"member_count"`
}

// ProjectRow is one project a department is assigned to.
type ProjectRow struct {
	models.ProjectDepartmentAssignment
	ProjectName   string `json:"project_name"`
	ProjectStatus string `json:"project_status"`
}

// ProjectDepartments returns every department invited to the project with
// its response and current member count.
func ProjectDepartments(db *gorm.DB, projectID uint) ([]DepartmentRow, error) {
	var asgs []models.ProjectDepartmentAssignment
	if err := db.Where("project_id = ?", projectID).
		Order("created_at ASC").Find(&asgs).Error; err != nil {
		return nil, fmt.Errorf("assignment: list departments for project %d: %w", projectID, err)
	}

	rows := make([]DepartmentRow, 0, len(asgs))
	for _, a := range asgs {
		var dept models.Department
		if err := db.First(&dept, a.DepartmentID).Error; err != nil {
			return nil, fmt.Errorf("assignment: load department %d: %w", a.DepartmentID, err)
		}
		var count int64
		if err := db.Model(&models.User{}).
			Where("department_id = ?", a.DepartmentID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("assignment: count members of department %d: %w", a.DepartmentID, err)
		}
		rows = append(rows, DepartmentRow{
			ProjectDepartmentAssignment: a,
			DepartmentName:              dept.Name,
			ManagerID:                   dept.ManagerID,
			MemberCount:                 count,
		})
	}
	return rows, nil
}

// DepartmentProjects returns the projects a department has been invited to,
// optionally filtered by assignment status.
func DepartmentProjects(db *gorm.DB, departmentID uint, status string) ([]ProjectRow, error) {
	q := db.Where("department_id = ?", departmentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var asgs []models.ProjectDepartmentAssignment
	if err := q.Order("created_at DESC").Find(&asgs).Error; err != nil {
		return nil, fmt.Errorf("assignment: list projects for department %d: %w", departmentID, err)
	}

	rows := make([]ProjectRow, 0, len(asgs))
	for _, a := range asgs {
		var project models.Project
		if err := db.First(&project, a.ProjectID).Error; err != nil {
			return nil, fmt.Errorf("assignment: load project %d: %w", a.ProjectID, err)
		}
		rows = append(rows, ProjectRow{
			ProjectDepartmentAssignment: a,
			ProjectName:                 project.Name,
			ProjectStatus:               project.Status,
		})
	}
	return rows, nil
}
