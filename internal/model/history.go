package model

import "time"

const (
	ChangeCreated  = "created"
	ChangeStatus   = "status"
	ChangeAssignee = "assignee"
	ChangeReopened = "reopened"
)

// TaskHistory is the append-only audit trail. One row per transition,
// including creation and reopen.
type TaskHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"column:task_id;index" json:"task_id"`
	UserID     uint      `gorm:"column:user_id" json:"user_id"`
	ChangeType string    `gorm:"column:change_type;size:32" json:"change_type"`
	OldValue   string    `gorm:"column:old_value;size:255" json:"old_value"`
	NewValue   string    `gorm:"column:new_value;size:255" json:"new_value"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TaskHistory) TableName() string {
	return "task_history"
}
