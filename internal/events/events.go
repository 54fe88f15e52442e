// Package events carries workflow transition events from the ledgers to the
// notification dispatcher. Publishing is fire-and-forget: a transition never
// blocks on, or fails because of, the notification side channel.
package events

import (
	"log"
	"time"
)

// Type identifies a workflow transition.
type Type string

const (
	TypeDepartmentInvited      Type = "department.invited"
	TypeInvitationAccepted     Type = "invitation.accepted"
	TypeInvitationRejected     Type = "invitation.rejected"
	TypeTeamAssigned           Type = "team.assigned"
	TypeDeptTaskCreated        Type = "dept_task.created"
	TypeDeptTaskAccepted       Type = "dept_task.accepted"
	TypeDeptTaskRejected       Type = "dept_task.rejected"
	TypeDeptTaskSubmitted      Type = "dept_task.submitted"
	TypeDeptTaskApproved       Type = "dept_task.approved"
	TypeDeptTaskReturned       Type = "dept_task.submission_rejected"
	TypeMemberTaskCreated      Type = "member_task.created"
	TypeMemberTaskStarted      Type = "member_task.started"
	TypeMemberTaskSubmitted    Type = "member_task.submitted"
	TypeMemberTaskApproved     Type = "member_task.approved"
	TypeMemberTaskReturned     Type = "member_task.submission_rejected"
	TypeMemberTaskReassigned   Type = "member_task.reassigned"
	TypeWarningIssued          Type = "warning.issued"
	TypeOverdueDigest          Type = "overdue.digest"
)

// Audience selects who receives the resulting notifications. The dispatcher
// resolves AudienceDepartmentManager and AudienceAdmins against the store at
// delivery time.
type Audience string

const (
	// AudienceUsers delivers to the explicit Recipients list.
	AudienceUsers Audience = "users"
	// AudienceDepartmentManager delivers to the manager of DepartmentID.
	AudienceDepartmentManager Audience = "department_manager"
	// AudienceAdmins delivers to every admin user.
	AudienceAdmins Audience = "admins"
)

// Event is a single workflow transition.
type Event struct {
	Type         Type
	Audience     Audience
	Recipients   []uint
	ProjectID    uint
	DepartmentID uint
	TaskID       uint
	ActorID      uint
	Title        string
	Message      string
	At           time.Time
}

// Bus is a buffered in-process event channel. It is the seam where an
// external queue would be wired if notifications ever need to survive a
// process restart.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = 256
	}
	return &Bus{ch: make(chan Event, size)}
}

// Publish enqueues an event without blocking. If the buffer is full the
// event is dropped with a log line; the workflow transition has already
// committed and must not wait on the side channel.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case b.ch <- e:
	default:
		log.Printf("events: bus full, dropped %s for project %d", e.Type, e.ProjectID)
	}
}

// Events returns the receive side of the bus.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close closes the bus. Publish must not be called after Close.
func (b *Bus) Close() {
	close(b.ch)
}
