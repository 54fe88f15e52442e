package warning

import (
	"testing"
)

func TestGetUserStats(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	issueWarning(t, db, f, IssueOpts{Severity: SeverityLow, WarningType: TypeLateSubmission, PenaltyAmount: 10})
	issueWarning(t, db, f, IssueOpts{Severity: SeverityHigh, WarningType: TypeLateSubmission, PenaltyAmount: 25})
	w := issueWarning(t, db, f, IssueOpts{Severity: SeverityHigh, WarningType: TypePoorQuality, PenaltyAmount: 15})

	if err := Acknowledge(db, w.ID, f.warned); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	stats, err := GetUserStats(db, f.warned.ID, 0)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.BySeverity[SeverityHigh] != 2 || stats.BySeverity[SeverityLow] != 1 {
		t.Errorf("BySeverity = %v", stats.BySeverity)
	}
	if stats.ByType[TypeLateSubmission] != 2 || stats.ByType[TypePoorQuality] != 1 {
		t.Errorf("ByType = %v", stats.ByType)
	}
	if stats.TotalPenalty != 50 {
		t.Errorf("TotalPenalty = %v, want 50", stats.TotalPenalty)
	}
	if stats.Acknowledged != 1 || stats.Unacknowledged != 2 {
		t.Errorf("acked = %d, unacked = %d", stats.Acknowledged, stats.Unacknowledged)
	}
}

func TestGetUserStats_ProjectScoped(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	issueWarning(t, db, f, IssueOpts{PenaltyAmount: 10})

	stats, err := GetUserStats(db, f.warned.ID, f.projectID)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1", stats.Total)
	}

	other, err := GetUserStats(db, f.warned.ID, 999)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if other.Total != 0 {
		t.Errorf("other project Total = %d, want 0", other.Total)
	}
}

func TestGetProjectSummary(t *testing.T) {
	db := testDB(t)
	f := seed(t, db)

	issueWarning(t, db, f, IssueOpts{Severity: SeverityCritical, PenaltyAmount: 100})
	issueWarning(t, db, f, IssueOpts{Severity: SeverityLow, PenaltyAmount: 5})
	issueWarning(t, db, f, IssueOpts{WarnedUserID: f.issuer.ID, Severity: SeverityCritical, PenaltyAmount: 75})

	s, err := GetProjectSummary(db, f.projectID)
	if err != nil {
		t.Fatalf("GetProjectSummary: %v", err)
	}
	if s.Total != 3 {
		t.Errorf("Total = %d, want 3", s.Total)
	}
	if s.Critical != 2 {
		t.Errorf("Critical = %d, want 2", s.Critical)
	}
	if s.TotalPenalty != 180 {
		t.Errorf("TotalPenalty = %v, want 180", s.TotalPenalty)
	}
	if s.WarnedUsers != 2 {
		t.Errorf("WarnedUsers = %d, want 2", s.WarnedUsers)
	}
}

func TestGetProjectSummary_Empty(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	s, err := GetProjectSummary(db, 42)
	if err != nil {
		t.Fatalf("GetProjectSummary: %v", err)
	}
	if s.Total != 0 || s.TotalPenalty != 0 || s.WarnedUsers != 0 {
		t.Errorf("summary = %+v, want zero", s)
	}
}
