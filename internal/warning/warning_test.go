package warning

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.DepartmentTask{},
		&models.MemberTask{},
		&models.Warning{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

type fixture struct {
	issuer    models.User
	warned    models.User
	projectID uint
	bus       *events.Bus
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	bus := events.NewBus(32)
	t.Cleanup(bus.Close)

	issuer := models.User{Name: "Mia", Email: "mia@corp.test", Role: "manager"}
	db.Create(&issuer)
	warned := models.User{Name: "Bob", Email: "bob@corp.test", Role: "member"}
	db.Create(&warned)
	project := models.Project{Name: "Atlas"}
	db.Create(&project)
	return fixture{issuer: issuer, warned: warned, projectID: project.ID, bus: bus}
}

func issueWarning(t *testing.T, db *gorm.DB, f fixture, opts IssueOpts) *models.Warning {
	t.Helper()
	if opts.ProjectID == 0 {
		opts.ProjectID = f.projectID
	}
	if opts.WarnedUserID == 0 {
		opts.WarnedUserID = f.warned.ID
	}
	if opts.WarningType == "" {
		opts.WarningType = TypeMissedDeadline
	}
	if opts.Severity == "" {
		opts.Severity = SeverityMedium
	}
	if opts.Reason == "" {
		opts.Reason = "deadline passed"
	}
	w, err := Issue(db, f.bus, opts, f.issuer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return w
}

func TestIssue(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	w := issueWarning(t, db, f, IssueOpts{PenaltyAmount: 50})
	if w.IssuedByID != f.issuer.ID {
		t.Errorf("IssuedByID = %d", w.IssuedByID)
	}
	if w.AcknowledgedAt != nil {
		t.Error("new warning must be unacknowledged")
	}

	select {
	case evt := <-f.bus.Events():
		if evt.Type != events.TypeWarningIssued {
			t.Errorf("event type = %q", evt.Type)
		}
		if len(evt.Recipients) != 1 || evt.Recipients[0] != f.warned.ID {
			t.Errorf("recipients = %v", evt.Recipients)
		}
	default:
		t.Error("expected a warning event on the bus")
	}
}

func TestIssue_Validation(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	cases := []IssueOpts{
		{ProjectID: f.projectID, WarnedUserID: f.warned.ID, WarningType: "tardy", Severity: SeverityLow, Reason: "r"},
		{ProjectID: f.projectID, WarnedUserID: f.warned.ID, WarningType: TypeOther, Severity: "extreme", Reason: "r"},
		{ProjectID: f.projectID, WarnedUserID: f.warned.ID, WarningType: TypeOther, Severity: SeverityLow},
		{ProjectID: f.projectID, WarnedUserID: f.warned.ID, WarningType: TypeOther, Severity: SeverityLow, Reason: "r", PenaltyAmount: -1},
	}
	for i, opts := range cases {
		if _, err := Issue(db, f.bus, opts, f.issuer); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("case %d: err = %v, want validation", i, err)
		}
	}
}

func TestIssue_SingleTaskReference(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	dt := models.DepartmentTask{ProjectID: f.projectID, DepartmentID: 1, Title: "p",
		Deadline: time.Now().Add(time.Hour)}
	db.Create(&dt)
	mt := models.MemberTask{DepartmentTaskID: dt.ID, AssigneeID: f.warned.ID, Title: "c",
		Deadline: time.Now().Add(time.Hour)}
	db.Create(&mt)

	_, err := Issue(db, f.bus, IssueOpts{
		ProjectID: f.projectID, WarnedUserID: f.warned.ID,
		WarningType: TypeOther, Severity: SeverityLow, Reason: "r",
		DepartmentTaskID: &dt.ID, MemberTaskID: &mt.ID,
	}, f.issuer)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("both refs: err = %v, want validation", err)
	}

	// One reference at a time is fine.
	if _, err := Issue(db, f.bus, IssueOpts{
		ProjectID: f.projectID, WarnedUserID: f.warned.ID,
		WarningType: TypeOther, Severity: SeverityLow, Reason: "r",
		MemberTaskID: &mt.ID,
	}, f.issuer); err != nil {
		t.Fatalf("member ref: %v", err)
	}
}

func TestIssue_UnknownReferences(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	_, err := Issue(db, f.bus, IssueOpts{
		ProjectID: 999, WarnedUserID: f.warned.ID,
		WarningType: TypeOther, Severity: SeverityLow, Reason: "r",
	}, f.issuer)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown project: err = %v", err)
	}

	_, err = Issue(db, f.bus, IssueOpts{
		ProjectID: f.projectID, WarnedUserID: 999,
		WarningType: TypeOther, Severity: SeverityLow, Reason: "r",
	}, f.issuer)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestIssue_NoUniquenessPerTask(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	issueWarning(t, db, f, IssueOpts{})
	issueWarning(t, db, f, IssueOpts{})

	list, meta, err := List(db, ListFilters{WarnedUserID: f.warned.ID}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || meta.Total != 2 {
		t.Errorf("warnings = %d, want 2", len(list))
	}
}

func TestAcknowledge(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)
	w := issueWarning(t, db, f, IssueOpts{})

	if err := Acknowledge(db, w.ID, f.warned); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	got, _ := Get(db, w.ID)
	if got.AcknowledgedAt == nil {
		t.Fatal("AcknowledgedAt not stamped")
	}
	first := *got.AcknowledgedAt

	// Acknowledgement is one-way; the original stamp survives.
	err := Acknowledge(db, w.ID, f.warned)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second ack: err = %v, want conflict", err)
	}
	got, _ = Get(db, w.ID)
	if !got.AcknowledgedAt.Equal(first) {
		t.Error("acknowledgement stamp changed")
	}
}

func TestAcknowledge_OnlyWarnedUser(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)
	w := issueWarning(t, db, f, IssueOpts{})

	if err := Acknowledge(db, w.ID, f.issuer); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}
	if err := Acknowledge(db, 999, f.warned); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown warning: err = %v, want not found", err)
	}
}

func TestList_Filters(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	issueWarning(t, db, f, IssueOpts{Severity: SeverityLow})
	issueWarning(t, db, f, IssueOpts{Severity: SeverityCritical})

	crit, _, err := List(db, ListFilters{Severity: SeverityCritical}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(crit) != 1 {
		t.Errorf("critical = %d, want 1", len(crit))
	}

	byProject, _, err := List(db, ListFilters{ProjectID: f.projectID}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byProject) != 2 {
		t.Errorf("by project = %d, want 2", len(byProject))
	}
}
