package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFansOutToBothWriters(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)
	logger.Info("command sent", "command", "generate cv")

	assert.Contains(t, stderr.String(), "msg=\"command sent\"")
	assert.Contains(t, stderr.String(), "command=\"generate cv\"")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "command sent", entry["msg"])
	assert.Equal(t, "generate cv", entry["command"])
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)
	logger.Debug("suggestion fetch skipped")
	logger.Info("session refreshed")

	assert.Zero(t, stderr.Len())
	assert.Zero(t, file.Len())
}
