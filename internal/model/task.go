package model

import "time"

type TaskStatus string

const (
	StatusPending            TaskStatus = "pending"
	StatusInProgress         TaskStatus = "in_progress"
	StatusPartiallyCompleted TaskStatus = "partially_completed"
	StatusCompleted          TaskStatus = "completed"
	StatusRejected           TaskStatus = "rejected"
)

type TaskPriority string

const (
	PriorityUrgent TaskPriority = "urgent"
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Task is a time-boxed work item. AssigneeID is nil while the task is
// free to claim; DueAt is stored as an absolute instant and rendered in
// the deployment zone.
type Task struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Title             string       `gorm:"column:title;size:255" json:"title"`
	Description       string       `gorm:"column:description;type:text" json:"description"`
	Priority          TaskPriority `gorm:"column:priority;size:16;index" json:"priority"`
	Status            TaskStatus   `gorm:"column:status;size:32;index:idx_task_status_due" json:"status"`
	DueAt             *time.Time   `gorm:"column:due_at;index:idx_task_status_due" json:"due_at"`
	AssigneeID        *uint        `gorm:"column:assignee_id;index" json:"assignee_id"`
	CreatorID         uint         `gorm:"column:creator_id;index" json:"creator_id"`
	CompletionComment string       `gorm:"column:completion_comment;type:text" json:"completion_comment"`
	UpdatedAt         time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CreatedAt         time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) Done() bool {
	return t.Status == StatusCompleted || t.Status == StatusPartiallyCompleted
}

// Attachment is an opaque reference (a chat-platform file id) attached to
// a task during creation or completion. Position preserves burst order.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"column:task_id;index" json:"task_id"`
	Ref       string    `gorm:"column:ref;size:255" json:"ref"`
	Position  int       `gorm:"column:position" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Attachment) TableName() string {
	return "task_attachments"
}
