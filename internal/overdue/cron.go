package overdue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/events"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextRun parses a 5-field cron expression and returns the duration until
// the next fire time. Returns an error on a malformed expression.
func NextRun(expr string) (time.Duration, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0, fmt.Errorf("overdue: parse schedule %q: %w", expr, err)
	}
	d := time.Until(sched.Next(time.Now()))
	if d < 0 {
		d = 0
	}
	return d, nil
}

// RunDigest runs the periodic scan until ctx is cancelled. Each fire counts
// overdue tasks and, when any exist, publishes a digest event so admins see
// a warning-suggestion notification. It never issues warnings itself.
func RunDigest(ctx context.Context, db *gorm.DB, bus *events.Bus, schedule string) error {
	if _, err := NextRun(schedule); err != nil {
		return err
	}
	for {
		d, err := NextRun(schedule)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}

		digest, err := Scan(db)
		if err != nil {
			log.Printf("overdue: scan failed: %v", err)
			continue
		}
		if digest.DepartmentTasks == 0 && digest.MemberTasks == 0 {
			continue
		}
		bus.Publish(events.Event{
			Type:     events.TypeOverdueDigest,
			Audience: events.AudienceAdmins,
			Title:    "Overdue tasks",
			Message: fmt.Sprintf("%d department tasks and %d member tasks are past deadline; review for warnings.",
				digest.DepartmentTasks, digest.MemberTasks),
		})
	}
}
