package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/matst80/casa-finder/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestJsonLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogConfig{Level: "warn", JSON: true})
	logger.Info("hidden")
	logger.Warn("ignoring invalid filter bound", "field", "priceMin")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ignoring invalid filter bound", line["msg"])
	assert.Equal(t, "priceMin", line["field"])
}

func TestTintLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogConfig{Level: "info", Color: true})
	logger.Info("catalog loaded", "properties", 12)
	assert.Contains(t, buf.String(), "catalog loaded")
	assert.Contains(t, buf.String(), "12")
}
