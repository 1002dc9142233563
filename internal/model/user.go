package model

import "time"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User mirrors a chat-platform identity. Users are created lazily on
// first contact; role changes are an admin operation.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    string    `gorm:"column:chat_id;size:64;uniqueIndex" json:"chat_id"`
	Username  string    `gorm:"column:username;size:255" json:"username"`
	Role      string    `gorm:"column:role;size:16" json:"role"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
