package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_Logger_InitLogger_LogLevelConfiguration tests logger initialization with various log levels
func Test_Logger_InitLogger_LogLevelConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		expectedLevel log.Level
	}{
		{name: "debug_level", logLevel: "debug", expectedLevel: log.DebugLevel},
		{name: "info_level", logLevel: "info", expectedLevel: log.InfoLevel},
		{name: "warn_level", logLevel: "warn", expectedLevel: log.WarnLevel},
		{name: "warning_level_alias", logLevel: "warning", expectedLevel: log.WarnLevel},
		{name: "error_level", logLevel: "error", expectedLevel: log.ErrorLevel},
		{name: "default_empty_level", logLevel: "", expectedLevel: log.DebugLevel},
		{name: "default_invalid_level", logLevel: "invalid", expectedLevel: log.DebugLevel},
		{name: "case_mixed_info", logLevel: "InFo", expectedLevel: log.InfoLevel},
		{name: "whitespace_trimmed", logLevel: "  warn  ", expectedLevel: log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalLogLevel := os.Getenv("LOG_LEVEL")
			defer os.Setenv("LOG_LEVEL", originalLogLevel)
			os.Setenv("LOG_LEVEL", tt.logLevel)

			Logger = nil
			InitLogger()

			require.NotNil(t, Logger)
			assert.Equal(t, tt.expectedLevel, Logger.GetLevel())
		})
	}
}

func Test_Logger_GetLogger_SingletonBehavior(t *testing.T) {
	Logger = log.New(os.Stderr)
	existing := Logger

	assert.Same(t, existing, GetLogger())
	assert.Same(t, GetLogger(), GetLogger())

	Logger = nil
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.Same(t, Logger, logger)
}

func Test_Logger_ConfigureOutput_Formats(t *testing.T) {
	defer func() { Logger = nil }()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		ConfigureOutput(&buf, "info", "json", true)

		GetLogger().Info("chunk loaded", "chunk_x", 3)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "chunk loaded", entry["msg"])
		assert.EqualValues(t, 3, entry["chunk_x"])
	})

	t.Run("level_filters_debug", func(t *testing.T) {
		var buf bytes.Buffer
		ConfigureOutput(&buf, "warn", "text", true)

		GetLogger().Debug("hidden")
		GetLogger().Info("also hidden")
		assert.Empty(t, buf.String())

		GetLogger().Warn("visible")
		assert.Contains(t, buf.String(), "visible")
	})
}

func Test_DefaultLoggerWrapper_WithCarriesFields(t *testing.T) {
	defer func() { Logger = nil }()

	var buf bytes.Buffer
	ConfigureOutput(&buf, "debug", "logfmt", true)

	base := NewDefaultLoggerWrapper()
	scoped := base.With("component", "loader").With("world", "square")
	scoped.Info("template built", "tiles", 400)

	out := buf.String()
	assert.Contains(t, out, "component=loader")
	assert.Contains(t, out, "world=square")
	assert.Contains(t, out, "tiles=400")

	buf.Reset()
	base.Info("no fields")
	assert.False(t, strings.Contains(buf.String(), "component="), "parent wrapper must not inherit child fields")
}

func Test_Logger_ContextHelpers(t *testing.T) {
	Logger = nil
	InitLogger()

	helpers := map[string]func() *log.Logger{
		"chunk_coords": func() *log.Logger { return WithChunkCoords(5, -2) },
		"world":        func() *log.Logger { return WithWorld("square") },
		"component":    func() *log.Logger { return WithComponent("streaming") },
	}

	for name, fn := range helpers {
		t.Run(name, func(t *testing.T) {
			logger := fn()
			require.NotNil(t, logger)
			assert.NotSame(t, Logger, logger)
			assert.NotPanics(t, func() { logger.Debug("test message") })
		})
	}
}
