// Package obslog provides the admin-plane logger: logrus with a rotating
// file backend, mirroring shared/logger/logger.go's split from the
// engine-internal zap logger used in internal/engine.
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the admin-plane logger's level, format and rotation.
type Config struct {
	Level      string
	JSONFormat bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig returns sane defaults for local development: text format,
// stdout only (no file rotation).
func DefaultConfig() Config {
	return Config{Level: "info", JSONFormat: false}
}

// New builds a *logrus.Logger for the admin HTTP surface's request logging
// (health/metrics) per the above Config.
func New(cfg Config) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.JSONFormat {
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "caller",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Filename != "" {
		l.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		})
	} else {
		l.SetOutput(os.Stdout)
	}

	return l
}

func orDefault(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}
