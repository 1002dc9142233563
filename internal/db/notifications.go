package db

import (
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HasNotificationLog reports whether a dedup row exists for (task, kind).
func HasNotificationLog(taskID uint, kind model.NotificationKind) (bool, error) {
	var count int64
	err := db.Model(&model.NotificationLog{}).
		Where("task_id = ? AND kind = ?", taskID, kind).
		Count(&count).Error
	return count > 0, errors.WithStack(err)
}

// InsertNotificationLogIfAbsent records a sent notification. The insert
// is idempotent on the (task_id, kind) key so two overlapping scheduler
// ticks cannot double-record.
func InsertNotificationLogIfAbsent(taskID uint, kind model.NotificationKind) error {
	return errors.WithStack(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "kind"}},
		DoNothing: true,
	}).Create(&model.NotificationLog{TaskID: taskID, Kind: kind}).Error)
}

// GetOrCreatePreferences returns the user's notification preferences,
// creating the defaults on first access.
func GetOrCreatePreferences(userID uint) (*model.NotificationPreference, error) {
	var pref model.NotificationPreference
	err := db.Where("user_id = ?", userID).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.WithStack(err)
	}
	pref = model.DefaultPreference(userID)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&pref).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	if err := db.Where("user_id = ?", userID).First(&pref).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &pref, nil
}

// UpdatePreference writes a single preference column. Last write wins;
// only the owning user edits their own row.
func UpdatePreference(userID uint, field string, value any) error {
	switch field {
	case "enable_8h", "enable_4h", "enable_1h", "enable_overdue",
		"enable_comment", "quiet_start", "quiet_end":
	default:
		return errors.Errorf("unknown preference field: %s", field)
	}
	if _, err := GetOrCreatePreferences(userID); err != nil {
		return err
	}
	return errors.WithStack(db.Model(&model.NotificationPreference{}).
		Where("user_id = ?", userID).
		Update(field, value).Error)
}
