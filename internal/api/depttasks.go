package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/depttask"
	"github.com/cascadehq/cascade/internal/overdue"
)

type createDeptTaskRequest struct {
	DepartmentID   uint      `json:"department_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       string    `json:"priority"`
	Deadline       time.Time `json:"deadline"`
	EstimatedHours float64   `json:"estimated_hours"`
}

func (s *Server) handleCreateDeptTask(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req createDeptTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}

	task, err := depttask.Create(s.DB, s.Bus, depttask.CreateOpts{
		ProjectID:      projectID,
		DepartmentID:   req.DepartmentID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		Deadline:       req.Deadline,
		EstimatedHours: req.EstimatedHours,
	}, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListDeptTasks(c *gin.Context) {
	tasks, meta, err := depttask.List(s.DB, depttask.ListFilters{
		ProjectID:    uintQuery(c, "project_id"),
		DepartmentID: uintQuery(c, "department_id"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
	}, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "pagination": meta})
}

func (s *Server) handleGetDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	task, err := depttask.Get(s.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleAcceptDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := depttask.Accept(s.DB, s.Bus, id, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "in_progress"})
}

func (s *Server) handleRejectDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := depttask.Reject(s.DB, s.Bus, id, currentActor(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

type progressRequest struct {
	Progress    int      `json:"progress"`
	ActualHours *float64 `json:"actual_hours"`
}

func (s *Server) handleDeptTaskProgress(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := depttask.UpdateProgress(s.DB, id, req.Progress, req.ActualHours, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": req.Progress})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleSubmitDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := depttask.Submit(s.DB, s.Bus, id, currentActor(c), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "submitted"})
}

func (s *Server) handleApproveDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := depttask.Approve(s.DB, s.Bus, id, currentActor(c), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (s *Server) handleRejectDeptTaskSubmission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := depttask.RejectSubmission(s.DB, s.Bus, id, currentActor(c), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "in_progress"})
}

type updateDeptTaskRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Priority       *string  `json:"priority"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Force          bool     `json:"force"`
}

func (s *Server) handleUpdateDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req updateDeptTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	err := depttask.Update(s.DB, id, depttask.UpdateOpts{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
		Force:          req.Force,
	}, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (s *Server) handleDeleteDeptTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	force := c.Query("force") == "true"
	if err := depttask.Delete(s.DB, id, force, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handleOverdueDeptTasks(c *gin.Context) {
	tasks, err := overdue.DepartmentTasks(s.DB, uintQuery(c, "department_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
