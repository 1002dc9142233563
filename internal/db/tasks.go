package db

import (
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func CreateTask(t *model.Task) error {
	return errors.WithStack(db.Create(t).Error)
}

func GetTask(id uint) (*model.Task, error) {
	task := model.Task{ID: id}
	if err := db.First(&task).Error; err != nil {
		return nil, errors.Wrapf(err, "failed find task %d", id)
	}
	return &task, nil
}

// GetActiveTasksWithDueDate returns every task the scheduler must
// consider: not finished, not rejected, and carrying a due date.
func GetActiveTasksWithDueDate() ([]model.Task, error) {
	var tasks []model.Task
	err := db.
		Where("status NOT IN ?", []model.TaskStatus{
			model.StatusCompleted,
			model.StatusPartiallyCompleted,
			model.StatusRejected,
		}).
		Where("due_at IS NOT NULL").
		Find(&tasks).Error
	return tasks, errors.WithStack(err)
}

// ClaimTask atomically assigns a free task to userID and moves it to
// in_progress. It returns the number of affected rows: zero means another
// requestor won the race. The WHERE clause carries the whole race
// protection; there is no read-then-write.
func ClaimTask(taskID, userID uint) (int64, error) {
	return ClaimTaskTx(db, taskID, userID)
}

// ClaimTaskTx is ClaimTask inside an existing transaction, so the claim
// and its audit row commit together.
func ClaimTaskTx(tx *gorm.DB, taskID, userID uint) (int64, error) {
	res := tx.Model(&model.Task{}).
		Where("id = ? AND assignee_id IS NULL", taskID).
		Updates(map[string]any{
			"assignee_id": userID,
			"status":      model.StatusInProgress,
		})
	return res.RowsAffected, errors.WithStack(res.Error)
}

// UpdateStatus sets the task status together with any extra fields in a
// single update, so status and completion comment can never diverge.
func UpdateStatus(taskID uint, status model.TaskStatus, fields map[string]any) error {
	values := map[string]any{"status": status}
	for k, v := range fields {
		values[k] = v
	}
	res := db.Model(&model.Task{}).Where("id = ?", taskID).Updates(values)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(gorm.ErrRecordNotFound)
	}
	return nil
}

// InsertAttachment appends a ref to the task's attachment list. Position
// comes from the persisted row count inside one transaction, so ordering
// keeps growing across separate upload bursts and survives restarts.
func InsertAttachment(taskID uint, ref string) error {
	return errors.WithStack(db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Attachment{}).Where("task_id = ?", taskID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Create(&model.Attachment{
			TaskID:   taskID,
			Ref:      ref,
			Position: int(count),
		}).Error
	}))
}

func GetAttachments(taskID uint) ([]model.Attachment, error) {
	var refs []model.Attachment
	err := db.Where("task_id = ?", taskID).
		Order("position").
		Order("id").
		Find(&refs).Error
	return refs, errors.WithStack(err)
}

func DeleteAttachments(tx *gorm.DB, taskID uint) error {
	return errors.WithStack(tx.Where("task_id = ?", taskID).Delete(&model.Attachment{}).Error)
}

// ListTasks pages through tasks for the ops surface. A zero assigneeID
// means no owner restriction.
func ListTasks(statuses []model.TaskStatus, assigneeID uint, keyword string, page, pageSize int) ([]model.Task, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	tx := db.Model(&model.Task{})
	if len(statuses) > 0 {
		tx = tx.Where("status IN ?", statuses)
	}
	if assigneeID != 0 {
		tx = tx.Where("assignee_id = ?", assigneeID)
	}
	if keyword != "" {
		tx = tx.Where("title LIKE ?", "%"+keyword+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var tasks []model.Task
	err := tx.Order("due_at IS NULL").
		Order("due_at").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	return tasks, total, errors.WithStack(err)
}
