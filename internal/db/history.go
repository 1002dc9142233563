package db

import (
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func AppendHistory(taskID, userID uint, changeType, oldValue, newValue string) error {
	return AppendHistoryTx(db, taskID, userID, changeType, oldValue, newValue)
}

// AppendHistoryTx writes an audit row inside an existing transaction so a
// transition and its history entry commit together.
func AppendHistoryTx(tx *gorm.DB, taskID, userID uint, changeType, oldValue, newValue string) error {
	return errors.WithStack(tx.Create(&model.TaskHistory{
		TaskID:     taskID,
		UserID:     userID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}).Error)
}

func GetTaskHistory(taskID uint, limit int) ([]model.TaskHistory, error) {
	if limit < 1 {
		limit = 50
	}
	var rows []model.TaskHistory
	err := db.Where("task_id = ?", taskID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, errors.WithStack(err)
}
