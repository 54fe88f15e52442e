package warning

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
)

// UserStats aggregates one user's warnings for dashboards. Not used for
// automated enforcement.
type UserStats struct {
	UserID         uint           `json:"user_id"`
	Total          int64          `json:"total"`
	BySeverity     map[string]int `json:"by_severity"`
	ByType         map[string]int `json:"by_type"`
	TotalPenalty   float64        `json:"total_penalty"`
	Acknowledged   int64          `json:"acknowledged"`
	Unacknowledged int64          `json:"unacknowledged"`
}

// GetUserStats aggregates warnings for a user, optionally scoped to one
// project.
func GetUserStats(db *gorm.DB, userID uint, projectID uint) (*UserStats, error) {
	base := db.Model(&models.Warning{}).Where("warned_user_id = ?", userID)
	if projectID != 0 {
		base = base.Where("project_id = ?", projectID)
	}

	type row struct {
		Severity    string
		WarningType string
		Count       int
		Penalty     float64
	}
	var rows []row
	if err := base.Session(&gorm.Session{}).
		Select("severity, warning_type, COUNT(*) as count, SUM(penalty_amount) as penalty").
		Group("severity, warning_type").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("warning: user stats %d: %w", userID, err)
	}

	stats := UserStats{
		UserID:     userID,
		BySeverity: make(map[string]int),
		ByType:     make(map[string]int),
	}
	for _, r := range rows {
		stats.Total += int64(r.Count)
		stats.BySeverity[r.Severity] += r.Count
		stats.ByType[r.WarningType] += r.Count
		stats.TotalPenalty += r.Penalty
	}

	if err := base.Session(&gorm.Session{}).
		Where("acknowledged_at IS NOT NULL").
		Count(&stats.Acknowledged).Error; err != nil {
		return nil, fmt.Errorf("warning: count acknowledged for %d: %w", userID, err)
	}
	stats.Unacknowledged = stats.Total - stats.Acknowledged
	return &stats, nil
}

// ProjectSummary aggregates a project's warnings.
type ProjectSummary struct {
	ProjectID    uint    `json:"project_id"`
	Total        int64   `json:"total"`
	Critical     int64   `json:"critical"`
	TotalPenalty float64 `json:"total_penalty"`
	WarnedUsers  int64   `json:"warned_users"`
}

// GetProjectSummary aggregates warnings across one project.
func GetProjectSummary(db *gorm.DB, projectID uint) (*ProjectSummary, error) {
	s := ProjectSummary{ProjectID: projectID}

	type totals struct {
		Total   int64
		Penalty float64
	}
	var t totals
	if err := db.Model(&models.Warning{}).
		Select("COUNT(*) as total, COALESCE(SUM(penalty_amount), 0) as penalty").
		Where("project_id = ?", projectID).
		Find(&t).Error; err != nil {
		return nil, fmt.Errorf("warning: project summary %d: %w", projectID, err)
	}
	s.Total = t.Total
	s.TotalPenalty = t.Penalty

	if err := db.Model(&models.Warning{}).
		Where("project_id = ? AND severity = ?", projectID, SeverityCritical).
		Count(&s.Critical).Error; err != nil {
		return nil, fmt.Errorf("warning: count critical for %d: %w", projectID, err)
	}
	if err := db.Model(&models.Warning{}).
		Where("project_id = ?", projectID).
		Distinct("warned_user_id").
		Count(&s.WarnedUsers).Error; err != nil {
		return nil, fmt.Errorf("warning: count warned users for %d: %w", projectID, err)
	}
	return &s, nil
}
