package overdue

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cascadehq/cascade/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.DepartmentTask{}, &models.MemberTask{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func seedTasks(t *testing.T, db *gorm.DB) {
	t.Helper()
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	deptTasks := []models.DepartmentTask{
		{ProjectID: 1, DepartmentID: 1, Title: "late open", Status: models.TaskStatusInProgress, Deadline: past},
		{ProjectID: 1, DepartmentID: 2, Title: "late submitted", Status: models.TaskStatusSubmitted, Deadline: past},
		// Terminal or on-time tasks never count.
		{ProjectID: 1, DepartmentID: 1, Title: "late but done", Status: models.TaskStatusApproved, Deadline: past},
		{ProjectID: 1, DepartmentID: 1, Title: "on time", Status: models.TaskStatusAssigned, Deadline: future},
	}
	for i := range deptTasks {
		if err := db.Create(&deptTasks[i]).Error; err != nil {
			t.Fatalf("seed dept task: %v", err)
		}
	}

	memberTasks := []models.MemberTask{
		{DepartmentTaskID: 1, AssigneeID: 10, Title: "late", Status: models.TaskStatusAssigned, Deadline: past},
		{DepartmentTaskID: 1, AssigneeID: 11, Title: "late rejected", Status: models.TaskStatusRejected, Deadline: past},
		{DepartmentTaskID: 1, AssigneeID: 10, Title: "on time", Status: models.TaskStatusInProgress, Deadline: future},
	}
	for i := range memberTasks {
		if err := db.Create(&memberTasks[i]).Error; err != nil {
			t.Fatalf("seed member task: %v", err)
		}
	}
}

func TestDepartmentTasks(t *testing.T) {
	db := testDB(t)
	seedTasks(t, db)

	tasks, err := DepartmentTasks(db, 0)
	if err != nil {
		t.Fatalf("DepartmentTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("overdue = %d, want 2", len(tasks))
	}

	scoped, err := DepartmentTasks(db, 1)
	if err != nil {
		t.Fatalf("DepartmentTasks: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Title != "late open" {
		t.Errorf("scoped = %+v", scoped)
	}
}

func TestMemberTasks(t *testing.T) {
	db := testDB(t)
	seedTasks(t, db)

	tasks, err := MemberTasks(db, 0)
	if err != nil {
		t.Fatalf("MemberTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("overdue = %d, want 1", len(tasks))
	}

	scoped, err := MemberTasks(db, 11)
	if err != nil {
		t.Fatalf("MemberTasks: %v", err)
	}
	if len(scoped) != 0 {
		t.Errorf("rejected task counted as overdue: %+v", scoped)
	}
}

func TestScan(t *testing.T) {
	db := testDB(t)
	seedTasks(t, db)

	digest, err := Scan(db)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if digest.DepartmentTasks != 2 || digest.MemberTasks != 1 {
		t.Errorf("digest = %+v", digest)
	}
}

func TestScan_Empty(t *testing.T) {
	db := testDB(t)
	digest, err := Scan(db)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if digest.DepartmentTasks != 0 || digest.MemberTasks != 0 {
		t.Errorf("digest = %+v", digest)
	}
}

func TestNextRun(t *testing.T) {
	d, err := NextRun("*/5 * * * *")
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	if d < 0 || d > 5*time.Minute {
		t.Errorf("d = %v, want within 5 minutes", d)
	}
}

func TestNextRun_Malformed(t *testing.T) {
	if _, err := NextRun("not a schedule"); err == nil {
		t.Error("expected error for malformed expression")
	}
	// 6-field expressions are rejected; the parser takes standard 5 fields.
	if _, err := NextRun("0 0 9 * * 1-5"); err == nil {
		t.Error("expected error for 6-field expression")
	}
}
