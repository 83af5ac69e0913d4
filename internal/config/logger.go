package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "match-service"

// SetupLogger: человекочитаемый вывод в консоль + JSON-файл с ротацией.
// Пустой LogFile: только консоль.
func SetupLogger(cfg Config) zerolog.Logger {
	return newLogger(cfg, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

func newLogger(cfg Config, console io.Writer) zerolog.Logger {
	writers := []io.Writer{console}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	log.Logger = logger
	return logger
}
