package conf

import (
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/pkg/errors"
)

type Database struct {
	Type string `env:"DB_TYPE" envDefault:"sqlite3"`
	DSN  string `env:"DB_DSN" envDefault:"data/taskgram.db"`
}

type Log struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE" envDefault:"logs/taskgram.log"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
}

type Scheduler struct {
	TickInterval time.Duration `env:"SCHEDULER_TICK" envDefault:"30m"`
	ErrorBackoff time.Duration `env:"SCHEDULER_ERROR_BACKOFF" envDefault:"5m"`
	SendInterval time.Duration `env:"SCHEDULER_SEND_INTERVAL" envDefault:"500ms"`
}

type Telegram struct {
	Token   string        `env:"TELEGRAM_BOT_TOKEN"`
	APIBase string        `env:"TELEGRAM_API_BASE" envDefault:"https://api.telegram.org"`
	Timeout time.Duration `env:"TELEGRAM_TIMEOUT" envDefault:"30s"`
}

type Config struct {
	Database       Database
	Log            Log
	Scheduler      Scheduler
	Telegram       Telegram
	Timezone       string        `env:"TIMEZONE" envDefault:"Europe/Moscow"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":5244"`
	UploadDebounce time.Duration `env:"UPLOAD_DEBOUNCE" envDefault:"2s"`
}

var Conf *Config

// Load parses configuration from the environment and resolves the
// configured time zone. It must run before any component reads Conf.
func Load() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return errors.Wrap(err, "failed to parse config from env")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return errors.Wrapf(err, "invalid timezone %s", cfg.Timezone)
	}
	location = loc
	Conf = cfg
	return nil
}
