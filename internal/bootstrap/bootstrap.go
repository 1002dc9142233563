package bootstrap

import (
	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/pkg/utils"
)

func InitConfig() {
	if err := conf.Load(); err != nil {
		utils.Log.Fatalf("failed to load config: %+v", err)
	}
}

func InitLog() {
	cfg := conf.Conf.Log
	utils.InitLog(cfg.Level, cfg.File, cfg.MaxSizeMB, cfg.MaxBackups)
}

func InitDB() {
	if err := db.Init(conf.Conf.Database); err != nil {
		utils.Log.Fatalf("failed to init database: %+v", err)
	}
}

// InitAll runs the startup sequence in dependency order.
func InitAll() {
	InitConfig()
	InitLog()
	InitDB()
}
