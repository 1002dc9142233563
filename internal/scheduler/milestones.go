package scheduler

import (
	"time"

	"github.com/mkrivosheev/taskgram/internal/model"
)

const (
	window8hLow  = 7 * time.Hour
	window8hHigh = 9 * time.Hour

	window4hLow  = 3*time.Hour + 30*time.Minute
	window4hHigh = 4*time.Hour + 30*time.Minute

	window1hLow  = time.Minute
	window1hHigh = time.Hour

	overdueHorizon = 24 * time.Hour
)

// Classify returns the milestones due for a task at now, in the fixed
// evaluation order: 8h, 4h, 1h, overdue. The windows are disjoint, so at
// most one milestone matches for any given instant.
func Classify(dueAt, now time.Time) []model.NotificationKind {
	var kinds []model.NotificationKind
	remaining := dueAt.Sub(now)
	if remaining >= window8hLow && remaining <= window8hHigh {
		kinds = append(kinds, model.Reminder8h)
	}
	if remaining >= window4hLow && remaining <= window4hHigh {
		kinds = append(kinds, model.Reminder4h)
	}
	if remaining >= window1hLow && remaining <= window1hHigh {
		kinds = append(kinds, model.Reminder1h)
	}
	overdue := now.Sub(dueAt)
	if overdue > 0 && overdue < overdueHorizon {
		kinds = append(kinds, model.ReminderOverdue)
	}
	return kinds
}

// Deduped reports whether the kind records an at-most-once log row.
// The 1h milestone deliberately re-fires every tick with no dedup: the
// escalation right before a deadline is repeated on purpose.
func Deduped(kind model.NotificationKind) bool {
	return kind != model.Reminder1h
}
