package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/assignment"
)

type inviteRequest struct {
	DepartmentIDs []uint `json:"department_ids"`
}

func (s *Server) handleInviteDepartments(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}

	asgs, err := assignment.Invite(s.DB, s.Bus, projectID, req.DepartmentIDs, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": asgs})
}

func (s *Server) handleProjectDepartments(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	rows, err := assignment.ProjectDepartments(s.DB, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": rows})
}

func (s *Server) handleDepartmentProjects(c *gin.Context) {
	departmentID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	rows, err := assignment.DepartmentProjects(s.DB, departmentID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": rows})
}

func (s *Server) handleAcceptInvitation(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	departmentID, ok := uintParam(c, "deptId")
	if !ok {
		return
	}
	if err := assignment.Accept(s.DB, s.Bus, projectID, departmentID, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": assignment.StatusAccepted})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRejectInvitation(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	departmentID, ok := uintParam(c, "deptId")
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := assignment.Reject(s.DB, s.Bus, projectID, departmentID, currentActor(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": assignment.StatusRejected})
}

type assignTeamRequest struct {
	TeamID uint `json:"team_id"`
}

func (s *Server) handleAssignTeam(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	departmentID, ok := uintParam(c, "deptId")
	if !ok {
		return
	}
	var req assignTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := assignment.AssignTeam(s.DB, s.Bus, projectID, departmentID, req.TeamID, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned_team_id": req.TeamID})
}

func (s *Server) handleRemoveAssignment(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	departmentID, ok := uintParam(c, "deptId")
	if !ok {
		return
	}
	if err := assignment.Remove(s.DB, projectID, departmentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
