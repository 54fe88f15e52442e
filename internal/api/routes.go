package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/role"
)

// registerRoutes sets up all API routes on the gin router.
func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	v1.Use(s.authMiddleware())

	// Assignment registry.
	v1.POST("/projects/:id/departments", requireAction(role.ActionInviteDepartments), s.handleInviteDepartments)
	v1.GET("/projects/:id/departments", s.handleProjectDepartments)
	v1.GET("/departments/:id/projects", s.handleDepartmentProjects)
	v1.POST("/projects/:id/departments/:deptId/accept", requireAction(role.ActionRespondInvitation), s.handleAcceptInvitation)
	v1.POST("/projects/:id/departments/:deptId/reject", requireAction(role.ActionRespondInvitation), s.handleRejectInvitation)
	v1.POST("/projects/:id/departments/:deptId/team", requireAction(role.ActionAssignTeam), s.handleAssignTeam)
	v1.DELETE("/projects/:id/departments/:deptId", requireAction(role.ActionRemoveAssignment), s.handleRemoveAssignment)

	// Department-task ledger.
	v1.POST("/projects/:id/department-tasks", requireAction(role.ActionCreateDeptTask), s.handleCreateDeptTask)
	v1.GET("/department-tasks", s.handleListDeptTasks)
	v1.GET("/department-tasks/overdue", requireAction(role.ActionScanOverdue), s.handleOverdueDeptTasks)
	v1.GET("/department-tasks/:id", s.handleGetDeptTask)
	v1.POST("/department-tasks/:id/accept", requireAction(role.ActionRespondDeptTask), s.handleAcceptDeptTask)
	v1.POST("/department-tasks/:id/reject", requireAction(role.ActionRespondDeptTask), s.handleRejectDeptTask)
	v1.PATCH("/department-tasks/:id/progress", requireAction(role.ActionProgressDeptTask), s.handleDeptTaskProgress)
	v1.POST("/department-tasks/:id/submit", requireAction(role.ActionSubmitDeptTask), s.handleSubmitDeptTask)
	v1.POST("/department-tasks/:id/approve", requireAction(role.ActionReviewDeptTask), s.handleApproveDeptTask)
	v1.POST("/department-tasks/:id/reject-submission", requireAction(role.ActionReviewDeptTask), s.handleRejectDeptTaskSubmission)
	v1.PATCH("/department-tasks/:id", requireAction(role.ActionOverrideDeptTask), s.handleUpdateDeptTask)
	v1.DELETE("/department-tasks/:id", requireAction(role.ActionOverrideDeptTask), s.handleDeleteDeptTask)

	// Member-task ledger.
	v1.POST("/department-tasks/:id/member-tasks", requireAction(role.ActionCreateMemberTask), s.handleCreateMemberTask)
	v1.GET("/member-tasks", s.handleListMemberTasks)
	v1.GET("/member-tasks/overdue", requireAction(role.ActionScanOverdue), s.handleOverdueMemberTasks)
	v1.GET("/member-tasks/:id", s.handleGetMemberTask)
	v1.POST("/member-tasks/:id/start", requireAction(role.ActionWorkMemberTask), s.handleStartMemberTask)
	v1.PATCH("/member-tasks/:id/progress", requireAction(role.ActionWorkMemberTask), s.handleMemberTaskProgress)
	v1.POST("/member-tasks/:id/submit", requireAction(role.ActionWorkMemberTask), s.handleSubmitMemberTask)
	v1.POST("/member-tasks/:id/approve", requireAction(role.ActionReviewMemberTask), s.handleApproveMemberTask)
	v1.POST("/member-tasks/:id/reject-submission", requireAction(role.ActionReviewMemberTask), s.handleRejectMemberTaskSubmission)
	v1.POST("/member-tasks/:id/reassign", requireAction(role.ActionReassignMemberTask), s.handleReassignMemberTask)
	v1.GET("/users/:id/workload", s.handleWorkload)

	// Report log.
	v1.POST("/reports", requireAction(role.ActionCreateReport), s.handleCreateReport)
	v1.GET("/reports", s.handleListReports)
	v1.PATCH("/reports/:id", s.handleUpdateReport)
	v1.DELETE("/reports/:id", s.handleDeleteReport)

	// Warning ledger.
	v1.POST("/warnings", requireAction(role.ActionIssueWarning), s.handleIssueWarning)
	v1.GET("/warnings", s.handleListWarnings)
	v1.POST("/warnings/:id/acknowledge", requireAction(role.ActionAcknowledgeWarning), s.handleAcknowledgeWarning)
	v1.GET("/users/:id/warning-stats", s.handleUserWarningStats)
	v1.GET("/projects/:id/warning-summary", s.handleProjectWarningSummary)

	// Notifications.
	v1.GET("/notifications", s.handleListNotifications)
	v1.POST("/notifications/:id/read", s.handleMarkNotificationRead)
	v1.POST("/notifications/read-all", s.handleMarkAllNotificationsRead)

	// Audit trail.
	v1.GET("/audit/:entity/:id", requireAction(role.ActionReadAudit), s.handleAuditTrail)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
