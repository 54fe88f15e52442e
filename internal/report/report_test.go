package report

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cascadehq/cascade/internal/apperr"
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
		&models.Report{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

type fixture struct {
	reporter   models.User
	projectID  uint
	deptTaskID uint
	memTaskID  uint
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	reporter := models.User{Name: "Bob", Email: "bob@corp.test", Role: "member"}
	db.Create(&reporter)
	project := models.Project{Name: "Atlas"}
	db.Create(&project)
	dt := models.DepartmentTask{ProjectID: project.ID, DepartmentID: 1, Title: "parent",
		Deadline: time.Now().Add(time.Hour)}
	db.Create(&dt)
	mt := models.MemberTask{DepartmentTaskID: dt.ID, AssigneeID: reporter.ID, Title: "child",
		Deadline: time.Now().Add(time.Hour)}
	db.Create(&mt)
	return fixture{reporter: reporter, projectID: project.ID, deptTaskID: dt.ID, memTaskID: mt.ID}
}

func TestCreate(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	progress := 40
	r, err := Create(db, CreateOpts{
		ProjectID:    f.projectID,
		MemberTaskID: &f.memTaskID,
		ReportType:   TypeDaily,
		Title:        "Standup update",
		Content:      "Parser scaffolding done.",
		Progress:     &progress,
	}, f.reporter)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ReporterID != f.reporter.ID {
		t.Errorf("ReporterID = %d", r.ReporterID)
	}
	if r.Progress == nil || *r.Progress != 40 {
		t.Errorf("Progress = %v", r.Progress)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	_, err := Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeDaily}, f.reporter)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing title: err = %v", err)
	}

	_, err = Create(db, CreateOpts{ProjectID: f.projectID, ReportType: "quarterly", Title: "x"}, f.reporter)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad type: err = %v", err)
	}

	over := 120
	_, err = Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeDaily, Title: "x", Progress: &over}, f.reporter)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("progress out of range: err = %v", err)
	}
}

func TestCreate_ScopeMustExist(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	_, err := Create(db, CreateOpts{ProjectID: 999, ReportType: TypeDaily, Title: "x"}, f.reporter)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown project: err = %v", err)
	}

	ghost := uint(999)
	_, err = Create(db, CreateOpts{ProjectID: f.projectID, DepartmentTaskID: &ghost,
		ReportType: TypeDaily, Title: "x"}, f.reporter)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown department task: err = %v", err)
	}

	_, err = Create(db, CreateOpts{ProjectID: f.projectID, MemberTaskID: &ghost,
		ReportType: TypeDaily, Title: "x"}, f.reporter)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown member task: err = %v", err)
	}
}

func TestList_ScopePrecedence(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	mk := func(opts CreateOpts) {
		t.Helper()
		opts.ReportType = TypeDaily
		opts.Title = "r"
		if _, err := Create(db, opts, f.reporter); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mk(CreateOpts{ProjectID: f.projectID})
	mk(CreateOpts{ProjectID: f.projectID, DepartmentTaskID: &f.deptTaskID})
	mk(CreateOpts{ProjectID: f.projectID, MemberTaskID: &f.memTaskID})

	byProject, _, err := List(db, ListFilters{ProjectID: f.projectID}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byProject) != 3 {
		t.Errorf("project scope = %d, want 3", len(byProject))
	}

	// The member-task reference wins over broader ones.
	byMember, _, err := List(db, ListFilters{ProjectID: f.projectID, MemberTaskID: f.memTaskID}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byMember) != 1 {
		t.Errorf("member scope = %d, want 1", len(byMember))
	}

	byDept, _, err := List(db, ListFilters{DepartmentTaskID: f.deptTaskID}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byDept) != 1 {
		t.Errorf("dept scope = %d, want 1", len(byDept))
	}
}

func TestList_ReporterAndTypeFilters(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	other := models.User{Name: "Carol", Email: "carol@corp.test", Role: "member"}
	db.Create(&other)

	if _, err := Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeDaily, Title: "a"}, f.reporter); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeIssue, Title: "b"}, other); err != nil {
		t.Fatal(err)
	}

	mine, _, err := List(db, ListFilters{ReporterID: f.reporter.ID}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "a" {
		t.Errorf("mine = %+v", mine)
	}

	issues, _, err := List(db, ListFilters{ReportType: TypeIssue}, paging.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "b" {
		t.Errorf("issues = %+v", issues)
	}
}

func TestUpdate(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	r, err := Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeWeekly, Title: "w1"}, f.reporter)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	content := "revised numbers"
	progress := 75
	if err := Update(db, r.ID, UpdateOpts{Content: &content, Progress: &progress}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := Get(db, r.ID)
	if got.Content != content || got.Progress == nil || *got.Progress != 75 {
		t.Errorf("got = %+v", got)
	}
	// Title, type and scope are immutable through Update.
	if got.Title != "w1" || got.ReportType != TypeWeekly {
		t.Errorf("immutable fields changed: %+v", got)
	}
}

func TestUpdate_Validation(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)
	r, err := Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeWeekly, Title: "w1"}, f.reporter)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := Update(db, r.ID, UpdateOpts{}); !apperr.Is(err, apperr.KindValidation) {
		t.Error("expected validation for empty update")
	}
	bad := -5
	if err := Update(db, r.ID, UpdateOpts{Progress: &bad}); !apperr.Is(err, apperr.KindValidation) {
		t.Error("expected validation for negative progress")
	}
	if err := Update(db, 999, UpdateOpts{Progress: &bad}); !apperr.Is(err, apperr.KindNotFound) {
		t.Error("expected not found for unknown report")
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)
	r, err := Create(db, CreateOpts{ProjectID: f.projectID, ReportType: TypeCompletion, Title: "done"}, f.reporter)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := Delete(db, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get(db, r.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if err := Delete(db, r.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second delete: err = %v, want not found", err)
	}
}
