package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var Logger *log.Logger

// LogLevel represents available log levels
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// InitLogger initializes the global logger with configuration from environment variables
func InitLogger() {
	Logger = log.New(os.Stderr)

	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	setLogLevel(Logger, level)

	Logger.SetReportTimestamp(true)
	Logger.SetReportCaller(true)
	Logger.SetPrefix("[worldstream] ")

	Logger.Debug("Logger initialized successfully", "level", level)
}

// Configure rebuilds the global logger from explicit settings. Format is one of
// "json", "logfmt" or "text"; anything else falls back to text.
func Configure(level, format string, structured bool) {
	ConfigureOutput(os.Stderr, level, format, structured)
}

// ConfigureOutput is Configure with an explicit destination.
func ConfigureOutput(w io.Writer, level, format string, structured bool) {
	logger := log.New(w)
	setLogLevel(logger, ParseLevel(level))

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	logger.SetReportTimestamp(true)
	if format == "pretty" || !structured {
		logger.SetReportCaller(true)
	}
	logger.SetPrefix("[worldstream] ")

	Logger = logger
}

// ParseLevel maps a level name to a LogLevel. Unknown or empty names map to
// debug for maximum visibility.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return DebugLevel
	}
}

func setLogLevel(logger *log.Logger, level LogLevel) {
	switch level {
	case DebugLevel:
		logger.SetLevel(log.DebugLevel)
	case InfoLevel:
		logger.SetLevel(log.InfoLevel)
	case WarnLevel:
		logger.SetLevel(log.WarnLevel)
	case ErrorLevel:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.DebugLevel)
	}
}

// GetLogger returns the global logger instance
func GetLogger() *log.Logger {
	if Logger == nil {
		InitLogger()
	}
	return Logger
}

// WithFields creates a logger with contextual fields
func WithFields(fields ...interface{}) *log.Logger {
	return GetLogger().With(fields...)
}

// WithChunkCoords creates a logger with chunk coordinate context
func WithChunkCoords(chunkX, chunkY int) *log.Logger {
	return WithFields("chunk_x", chunkX, "chunk_y", chunkY)
}

// WithWorld creates a logger with world name context
func WithWorld(worldName string) *log.Logger {
	return WithFields("world", worldName)
}

// WithComponent creates a logger with component context
func WithComponent(component string) *log.Logger {
	return WithFields("component", component)
}
