package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/LavaJover/shvark-settlement-service/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup builds the process logger from log_config, installs it as the slog
// default and bridges the standard library logger to it.
func Setup(cfg config.LogConfig, env string) *slog.Logger {
	handler := NewHandler(output(cfg), cfg)
	base := slog.New(handler).With(
		slog.String("service", "settlement-service"),
		slog.String("env", env),
	)
	slog.SetDefault(base)

	stdBridge := slog.NewLogLogger(base.Handler(), slog.LevelInfo)
	log.SetOutput(stdBridge.Writer())
	log.SetFlags(0)

	return base
}

func NewHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func output(cfg config.LogConfig) io.Writer {
	switch cfg.LogOutput {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return &lumberjack.Logger{
			Filename:   cfg.LogOutput,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}
}
