// Package role defines the closed role set and the capability table gating
// each workflow action. Ownership checks (manages this department, is the
// assignee) live in the ledgers; this package only answers whether a role
// may ever perform an action.
package role

// Role is a platform role. The set is fixed; there is no runtime role
// configuration.
type Role string

const (
	Admin   Role = "admin"
	Manager Role = "manager"
	Member  Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == Admin || r == Manager || r == Member
}

// Action is a workflow operation subject to a capability check.
type Action string

const (
	ActionInviteDepartments   Action = "assignment.invite"
	ActionRespondInvitation   Action = "assignment.respond"
	ActionAssignTeam          Action = "assignment.assign_team"
	ActionRemoveAssignment    Action = "assignment.remove"
	ActionCreateDeptTask      Action = "dept_task.create"
	ActionRespondDeptTask     Action = "dept_task.respond"
	ActionProgressDeptTask    Action = "dept_task.progress"
	ActionSubmitDeptTask      Action = "dept_task.submit"
	ActionReviewDeptTask      Action = "dept_task.review"
	ActionOverrideDeptTask    Action = "dept_task.override"
	ActionCreateMemberTask    Action = "member_task.create"
	ActionWorkMemberTask      Action = "member_task.work"
	ActionReviewMemberTask    Action = "member_task.review"
	ActionReassignMemberTask  Action = "member_task.reassign"
	ActionCreateReport        Action = "report.create"
	ActionIssueWarning        Action = "warning.issue"
	ActionAcknowledgeWarning  Action = "warning.acknowledge"
	ActionScanOverdue         Action = "overdue.scan"
	ActionReadAudit           Action = "audit.read"
)

// capabilities maps each role to the actions it may perform.
var capabilities = map[Role]map[Action]bool{
	Admin: {
		ActionInviteDepartments:  true,
		ActionAssignTeam:         true,
		ActionRemoveAssignment:   true,
		ActionCreateDeptTask:     true,
		ActionReviewDeptTask:     true,
		ActionOverrideDeptTask:   true,
		ActionCreateReport:       true,
		ActionIssueWarning:       true,
		ActionAcknowledgeWarning: true,
		ActionScanOverdue:        true,
		ActionReadAudit:          true,
	},
	Manager: {
		ActionRespondInvitation:  true,
		ActionAssignTeam:         true,
		ActionRespondDeptTask:    true,
		ActionProgressDeptTask:   true,
		ActionSubmitDeptTask:     true,
		ActionCreateMemberTask:   true,
		ActionReviewMemberTask:   true,
		ActionReassignMemberTask: true,
		ActionCreateReport:       true,
		ActionIssueWarning:       true,
		ActionAcknowledgeWarning: true,
		ActionScanOverdue:        true,
	},
	Member: {
		ActionWorkMemberTask:     true,
		ActionCreateReport:       true,
		ActionAcknowledgeWarning: true,
		ActionScanOverdue:        true,
	},
}

// Can reports whether the role may perform the action.
func Can(r Role, a Action) bool {
	return capabilities[r][a]
}
