package model

import "time"

// NotificationKind names a reminder milestone relative to a task's due
// date. Reminder1h deliberately has no dedup log entry: it re-fires on
// every scheduler tick while the task stays inside the window.
type NotificationKind string

const (
	Reminder8h      NotificationKind = "reminder_8h"
	Reminder4h      NotificationKind = "reminder_4h"
	Reminder1h      NotificationKind = "reminder_1h"
	ReminderOverdue NotificationKind = "overdue"
)

// NotificationLog is an at-most-once dedup record for a (task, kind)
// pair. Rows are only ever inserted, never updated or deleted.
type NotificationLog struct {
	TaskID uint             `gorm:"column:task_id;primaryKey" json:"task_id"`
	Kind   NotificationKind `gorm:"column:kind;primaryKey;size:32" json:"kind"`
	SentAt time.Time        `gorm:"column:sent_at;autoCreateTime" json:"sent_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// NotificationPreference holds per-user reminder toggles and a quiet-hours
// window in local time-of-day ("HH:MM"). QuietStart > QuietEnd means the
// window wraps past midnight.
type NotificationPreference struct {
	UserID        uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Enable8h      bool      `gorm:"column:enable_8h" json:"enable_8h"`
	Enable4h      bool      `gorm:"column:enable_4h" json:"enable_4h"`
	Enable1h      bool      `gorm:"column:enable_1h" json:"enable_1h"`
	EnableOverdue bool      `gorm:"column:enable_overdue" json:"enable_overdue"`
	EnableComment bool      `gorm:"column:enable_comment" json:"enable_comment"`
	QuietStart    string    `gorm:"column:quiet_start;size:5" json:"quiet_start"`
	QuietEnd      string    `gorm:"column:quiet_end;size:5" json:"quiet_end"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreference returns the lazily-created defaults: every kind
// enabled, quiet hours 22:00-08:00.
func DefaultPreference(userID uint) NotificationPreference {
	return NotificationPreference{
		UserID:        userID,
		Enable8h:      true,
		Enable4h:      true,
		Enable1h:      true,
		EnableOverdue: true,
		EnableComment: true,
		QuietStart:    "22:00",
		QuietEnd:      "08:00",
	}
}

// Enabled reports whether the given kind is switched on.
func (p *NotificationPreference) Enabled(kind NotificationKind) bool {
	switch kind {
	case Reminder8h:
		return p.Enable8h
	case Reminder4h:
		return p.Enable4h
	case Reminder1h:
		return p.Enable1h
	case ReminderOverdue:
		return p.EnableOverdue
	default:
		return true
	}
}
