package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/LavaJover/shvark-settlement-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestJSONHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, config.LogConfig{LogLevel: "warn", LogFormat: "json"}))

	log.Info("dropped")
	log.Warn("kept", "order_id", "o-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "o-1", line["order_id"])
}

func TestFileOutputRotates(t *testing.T) {
	w := output(config.LogConfig{LogOutput: t.TempDir() + "/svc.log", MaxSizeMB: 1})
	lj, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, 1, lj.MaxSize)
}
