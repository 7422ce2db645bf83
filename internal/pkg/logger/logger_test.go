package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"kayayo/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, logger.ParseLevel(tc.in))
		})
	}
}

func TestNew_WritesServiceAndEnv(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Service: "kayayo", Env: "test", Level: "debug", Output: &buf})

	log.Debug("claim won", "order_id", "o-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kayayo", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "o-1", line["order_id"])
	assert.Equal(t, "claim won", line["msg"])
}
