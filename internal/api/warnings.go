package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/warning"
)

type issueWarningRequest struct {
	ProjectID        uint    `json:"project_id"`
	WarnedUserID     uint    `json:"warned_user_id"`
	WarningType      string  `json:"warning_type"`
	Severity         string  `json:"severity"`
	Reason           string  `json:"reason"`
	PenaltyAmount    float64 `json:"penalty_amount"`
	DepartmentTaskID *uint   `json:"department_task_id"`
	MemberTaskID     *uint   `json:"member_task_id"`
}

func (s *Server) handleIssueWarning(c *gin.Context) {
	var req issueWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}

	w, err := warning.Issue(s.DB, s.Bus, warning.IssueOpts{
		ProjectID:        req.ProjectID,
		WarnedUserID:     req.WarnedUserID,
		WarningType:      req.WarningType,
		Severity:         req.Severity,
		Reason:           req.Reason,
		PenaltyAmount:    req.PenaltyAmount,
		DepartmentTaskID: req.DepartmentTaskID,
		MemberTaskID:     req.MemberTaskID,
	}, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (s *Server) handleListWarnings(c *gin.Context) {
	warnings, meta, err := warning.List(s.DB, warning.ListFilters{
		ProjectID:    uintQuery(c, "project_id"),
		WarnedUserID: uintQuery(c, "warned_user_id"),
		Severity:     c.Query("severity"),
	}, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings, "pagination": meta})
}

func (s *Server) handleAcknowledgeWarning(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := warning.Acknowledge(s.DB, id, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true})
}

func (s *Server) handleUserWarningStats(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	stats, err := warning.GetUserStats(s.DB, userID, uintQuery(c, "project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleProjectWarningSummary(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	summary, err := warning.GetProjectSummary(s.DB, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
