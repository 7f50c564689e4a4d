package logger

import (
	"io"
	"os"

	"fleetdesk/backend/config"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Stdout always receives output; when a
// log path is configured the same stream also goes to a size-rotated
// file.
func New(cfg config.Log) zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	if cfg.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(w, rotator)
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
