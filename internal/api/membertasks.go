package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/membertask"
	"github.com/cascadehq/cascade/internal/overdue"
)

type createMemberTaskRequest struct {
	AssigneeID     uint      `json:"assignee_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       string    `json:"priority"`
	Deadline       time.Time `json:"deadline"`
	EstimatedHours float64   `json:"estimated_hours"`
}

func (s *Server) handleCreateMemberTask(c *gin.Context) {
	parentID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req createMemberTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}

	task, err := membertask.Create(s.DB, s.Bus, membertask.CreateOpts{
		DepartmentTaskID: parentID,
		AssigneeID:       req.AssigneeID,
		Title:            req.Title,
		Description:      req.Description,
		Priority:         req.Priority,
		Deadline:         req.Deadline,
		EstimatedHours:   req.EstimatedHours,
	}, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListMemberTasks(c *gin.Context) {
	tasks, meta, err := membertask.List(s.DB, membertask.ListFilters{
		DepartmentTaskID: uintQuery(c, "department_task_id"),
		AssigneeID:       uintQuery(c, "assignee_id"),
		Status:           c.Query("status"),
	}, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "pagination": meta})
}

func (s *Server) handleGetMemberTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	task, err := membertask.Get(s.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleStartMemberTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := membertask.Start(s.DB, s.Bus, id, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "in_progress"})
}

func (s *Server) handleMemberTaskProgress(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := membertask.UpdateProgress(s.DB, id, req.Progress, req.ActualHours, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": req.Progress})
}

func (s *Server) handleSubmitMemberTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := membertask.Submit(s.DB, s.Bus, id, currentActor(c), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "submitted"})
}

func (s *Server) handleApproveMemberTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := membertask.Approve(s.DB, s.Bus, id, currentActor(c), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (s *Server) handleRejectMemberTaskSubmission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := membertask.RejectSubmission(s.DB, s.Bus, id, currentActor(c), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "in_progress"})
}

type reassignRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

func (s *Server) handleReassignMemberTask(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := membertask.Reassign(s.DB, s.Bus, id, req.AssigneeID, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "assigned", "assignee_id": req.AssigneeID})
}

func (s *Server) handleWorkload(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	w, err := membertask.GetWorkload(s.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) handleOverdueMemberTasks(c *gin.Context) {
	tasks, err := overdue.MemberTasks(s.DB, uintQuery(c, "assignee_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
