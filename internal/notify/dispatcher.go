package notify

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
)

// Dispatcher consumes the event bus and fans each event out to notification
// rows and chat transports. Every failure here is logged and swallowed: the
// workflow transition that produced the event has already committed.
type Dispatcher struct {
	DB         *gorm.DB
	Bus        *events.Bus
	Transports []Transport
}

// Run processes events until the bus closes or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-d.Bus.Events():
			if !ok {
				return
			}
			d.handle(ctx, e)
		}
	}
}

// handle resolves recipients, writes notification rows all-or-nothing, and
// forwards to transports best-effort.
func (d *Dispatcher) handle(ctx context.Context, e events.Event) {
	recipients, err := d.resolve(e)
	if err != nil {
		log.Printf("dispatcher: resolve recipients for %s: %v", e.Type, err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	var deptID *uint
	if e.DepartmentID != 0 {
		id := e.DepartmentID
		deptID = &id
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range recipients {
			n := models.Notification{
				ProjectID:    e.ProjectID,
				DepartmentID: deptID,
				UserID:       userID,
				Type:         string(e.Type),
				Title:        e.Title,
				Message:      e.Message,
			}
			if err := tx.Create(&n).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("dispatcher: write notifications for %s: %v", e.Type, err)
		return
	}

	for _, t := range d.Transports {
		if err := t.Send(ctx, Message{
			Title:    e.Title,
			Text:     e.Message,
			Type:     string(e.Type),
			Severity: severityFor(e.Type),
		}); err != nil {
			log.Printf("dispatcher: %s send for %s: %v", t.Name(), e.Type, err)
		}
	}
}

// resolve turns the event's audience into user IDs.
func (d *Dispatcher) resolve(e events.Event) ([]uint, error) {
	switch e.Audience {
	case events.AudienceUsers:
		return e.Recipients, nil
	case events.AudienceDepartmentManager:
		managerID, err := ManagerFor(d.DB, e.DepartmentID)
		if err != nil {
			return nil, err
		}
		return []uint{managerID}, nil
	case events.AudienceAdmins:
		return Admins(d.DB)
	default:
		return e.Recipients, nil
	}
}

// severityFor picks a display severity for chat transports.
func severityFor(t events.Type) string {
	switch t {
	case events.TypeInvitationRejected, events.TypeDeptTaskRejected,
		events.TypeDeptTaskReturned, events.TypeMemberTaskReturned,
		events.TypeWarningIssued:
		return "warning"
	case events.TypeOverdueDigest:
		return "error"
	case events.TypeDeptTaskApproved, events.TypeMemberTaskApproved,
		events.TypeInvitationAccepted:
		return "success"
	default:
		return "info"
	}
}
