package db

import (
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func GetUser(id uint) (*model.User, error) {
	user := model.User{ID: id}
	if err := db.First(&user).Error; err != nil {
		return nil, errors.Wrapf(err, "failed find user %d", id)
	}
	return &user, nil
}

func GetUserByChatID(chatID string) (*model.User, error) {
	var user model.User
	if err := db.Where("chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, errors.Wrapf(err, "failed find user by chat id %s", chatID)
	}
	return &user, nil
}

// GetOrCreateUser resolves a chat identity, registering newcomers as
// employees. The insert is conflict-tolerant so two concurrent first
// contacts from the same chat cannot create two rows.
func GetOrCreateUser(chatID, username string) (*model.User, error) {
	user, err := GetUserByChatID(chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := model.User{
		ChatID:   chatID,
		Username: username,
		Role:     model.RoleEmployee,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoNothing: true,
	}).Create(&created).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return GetUserByChatID(chatID)
}

func ListAdmins() ([]model.User, error) {
	var admins []model.User
	err := db.Where("role = ?", model.RoleAdmin).Find(&admins).Error
	return admins, errors.WithStack(err)
}

func SetUserRole(chatID, role string) error {
	res := db.Model(&model.User{}).Where("chat_id = ?", chatID).Update("role", role)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(gorm.ErrRecordNotFound)
	}
	return nil
}
