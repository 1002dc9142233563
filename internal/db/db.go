package db

import (
	"strings"

	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Init opens the configured database and migrates the schema.
func Init(cfg conf.Database) error {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "sqlite3", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return errors.Errorf("unsupported database type: %s", cfg.Type)
	}
	d, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	db = d
	return AutoMigrate()
}

func AutoMigrate() error {
	return errors.WithStack(db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Attachment{},
		&model.NotificationLog{},
		&model.NotificationPreference{},
		&model.TaskHistory{},
	))
}

// DB exposes the raw handle for the rare caller that needs a transaction
// spanning several store operations.
func DB() *gorm.DB {
	return db
}
