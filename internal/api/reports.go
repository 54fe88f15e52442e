package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/report"
	"github.com/cascadehq/cascade/internal/role"
)

type createReportRequest struct {
	ProjectID        uint   `json:"project_id"`
	DepartmentTaskID *uint  `json:"department_task_id"`
	MemberTaskID     *uint  `json:"member_task_id"`
	ReportType       string `json:"report_type"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	Progress         *int   `json:"progress"`
	Issues           string `json:"issues"`
	Attachments      string `json:"attachments"`
}

func (s *Server) handleCreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}

	r, err := report.Create(s.DB, report.CreateOpts{
		ProjectID:        req.ProjectID,
		DepartmentTaskID: req.DepartmentTaskID,
		MemberTaskID:     req.MemberTaskID,
		ReportType:       req.ReportType,
		Title:            req.Title,
		Content:          req.Content,
		Progress:         req.Progress,
		Issues:           req.Issues,
		Attachments:      req.Attachments,
	}, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) handleListReports(c *gin.Context) {
	reports, meta, err := report.List(s.DB, report.ListFilters{
		ProjectID:        uintQuery(c, "project_id"),
		DepartmentTaskID: uintQuery(c, "department_task_id"),
		MemberTaskID:     uintQuery(c, "member_task_id"),
		ReporterID:       uintQuery(c, "reporter_id"),
		ReportType:       c.Query("report_type"),
	}, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "pagination": meta})
}

type updateReportRequest struct {
	Content  *string `json:"content"`
	Progress *int    `json:"progress"`
	Issues   *string `json:"issues"`
}

// requireReportOwner enforces the ownership contract the report ledger
// documents: only the reporter or an admin may edit or delete a report.
func (s *Server) requireReportOwner(c *gin.Context, id uint) bool {
	r, err := report.Get(s.DB, id)
	if err != nil {
		respondError(c, err)
		return false
	}
	actor := currentActor(c)
	if r.ReporterID != actor.ID && actor.Role != string(role.Admin) {
		respondError(c, apperr.Forbiddenf("report: user %d is not the reporter of report %d", actor.ID, id))
		return false
	}
	return true
}

func (s *Server) handleUpdateReport(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if !s.requireReportOwner(c, id) {
		return
	}
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := report.Update(s.DB, id, report.UpdateOpts{
		Content:  req.Content,
		Progress: req.Progress,
		Issues:   req.Issues,
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if !s.requireReportOwner(c, id) {
		return
	}
	if err := report.Delete(s.DB, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
