package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

// recordingTransport captures sent messages and optionally fails.
type recordingTransport struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingTransport) Name() string { return "recording" }

func (r *recordingTransport) Send(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingTransport) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func TestDispatcher_ExplicitRecipients(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus(8)
	transport := &recordingTransport{}
	d := &Dispatcher{DB: db, Bus: bus, Transports: []Transport{transport}}

	bus.Publish(events.Event{
		Type:       events.TypeMemberTaskCreated,
		Audience:   events.AudienceUsers,
		Recipients: []uint{4, 5},
		ProjectID:  1,
		Title:      "New task assigned to you",
		Message:    "m",
	})
	bus.Close()
	d.Run(context.Background())

	for _, userID := range []uint{4, 5} {
		ns, _, err := List(db, userID, false, paging.Page{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(ns) != 1 {
			t.Errorf("user %d notifications = %d, want 1", userID, len(ns))
		}
	}

	sent := transport.messages()
	if len(sent) != 1 {
		t.Fatalf("transport sends = %d, want 1", len(sent))
	}
	if sent[0].Type != string(events.TypeMemberTaskCreated) || sent[0].Severity != "info" {
		t.Errorf("message = %+v", sent[0])
	}
}

func TestDispatcher_DepartmentManagerAudience(t *testing.T) {
	db := testDB(t)
	manager := models.User{Name: "Mia", Email: "mia@corp.test", Role: "manager"}
	db.Create(&manager)
	dept := models.Department{Name: "Engineering", ManagerID: manager.ID}
	db.Create(&dept)

	bus := events.NewBus(8)
	d := &Dispatcher{DB: db, Bus: bus}

	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskCreated,
		Audience:     events.AudienceDepartmentManager,
		DepartmentID: dept.ID,
		Title:        "New department task",
	})
	bus.Close()
	d.Run(context.Background())

	ns, _, err := List(db, manager.ID, false, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("manager notifications = %d, want 1", len(ns))
	}
	if ns[0].DepartmentID == nil || *ns[0].DepartmentID != dept.ID {
		t.Errorf("DepartmentID = %v", ns[0].DepartmentID)
	}
}

func TestDispatcher_AdminsAudience(t *testing.T) {
	db := testDB(t)
	a1 := models.User{Name: "Ada", Email: "ada@corp.test", Role: "admin"}
	db.Create(&a1)
	a2 := models.User{Name: "Al", Email: "al@corp.test", Role: "admin"}
	db.Create(&a2)
	db.Create(&models.User{Name: "Bob", Email: "bob@corp.test", Role: "member"})

	bus := events.NewBus(8)
	d := &Dispatcher{DB: db, Bus: bus}

	bus.Publish(events.Event{
		Type:     events.TypeDeptTaskSubmitted,
		Audience: events.AudienceAdmins,
		Title:    "Department task submitted",
	})
	bus.Close()
	d.Run(context.Background())

	var total int64
	db.Model(&models.Notification{}).Count(&total)
	if total != 2 {
		t.Errorf("notification rows = %d, want one per admin", total)
	}
}

func TestDispatcher_UnresolvableAudienceSkipsEvent(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus(8)
	transport := &recordingTransport{}
	d := &Dispatcher{DB: db, Bus: bus, Transports: []Transport{transport}}

	// Department 999 does not exist; the event is dropped, not fatal.
	bus.Publish(events.Event{
		Type:         events.TypeDeptTaskCreated,
		Audience:     events.AudienceDepartmentManager,
		DepartmentID: 999,
		Title:        "t",
	})
	bus.Close()
	d.Run(context.Background())

	var total int64
	db.Model(&models.Notification{}).Count(&total)
	if total != 0 {
		t.Errorf("rows = %d, want 0", total)
	}
	if len(transport.messages()) != 0 {
		t.Error("transport should not fire for an unresolvable event")
	}
}

func TestDispatcher_TransportFailureDoesNotBlockRows(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus(8)
	failing := &recordingTransport{err: context.DeadlineExceeded}
	d := &Dispatcher{DB: db, Bus: bus, Transports: []Transport{failing}}

	bus.Publish(events.Event{
		Type:       events.TypeWarningIssued,
		Audience:   events.AudienceUsers,
		Recipients: []uint{7},
		Title:      "Warning issued",
	})
	bus.Close()
	d.Run(context.Background())

	ns, _, err := List(db, 7, false, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ns) != 1 {
		t.Errorf("rows = %d, want 1 despite transport failure", len(ns))
	}
}

func TestSeverityFor(t *testing.T) {
	cases := []struct {
		typ  events.Type
		want string
	}{
		{events.TypeWarningIssued, "warning"},
		{events.TypeDeptTaskReturned, "warning"},
		{events.TypeOverdueDigest, "error"},
		{events.TypeDeptTaskApproved, "success"},
		{events.TypeInvitationAccepted, "success"},
		{events.TypeDeptTaskCreated, "info"},
	}
	for _, c := range cases {
		if got := severityFor(c.typ); got != c.want {
			t.Errorf("severityFor(%s) = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestSeverityColor(t *testing.T) {
	if SeverityColor("success") == SeverityColor("error") {
		t.Error("severities should map to distinct colors")
	}
	if SeverityColor("unknown") != SeverityColor("info") {
		t.Error("unknown severity should fall back to the info color")
	}
}
