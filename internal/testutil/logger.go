package testutil

import (
	"fmt"
	"sync"

	"github.com/VoidMesh/worldstream/internal/logging"
)

// LogEntry is one call recorded by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// MockLogger records log calls. It is safe for concurrent use because the
// loader logs from worker goroutines.
type MockLogger struct {
	mu     *sync.Mutex
	logs   *[]LogEntry
	fields []interface{}
}

func NewMockLogger() *MockLogger {
	logs := make([]LogEntry, 0)
	return &MockLogger{
		mu:   &sync.Mutex{},
		logs: &logs,
	}
}

func (m *MockLogger) Debug(msg string, keysAndValues ...interface{}) {
	m.addLog("DEBUG", msg, keysAndValues...)
}

func (m *MockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.addLog("INFO", msg, keysAndValues...)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.addLog("WARN", msg, keysAndValues...)
}

func (m *MockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.addLog("ERROR", msg, keysAndValues...)
}

// With returns a child sharing the same log buffer.
func (m *MockLogger) With(keysAndValues ...interface{}) logging.LoggerInterface {
	fields := make([]interface{}, 0, len(m.fields)+len(keysAndValues))
	fields = append(fields, m.fields...)
	fields = append(fields, keysAndValues...)
	return &MockLogger{mu: m.mu, logs: m.logs, fields: fields}
}

func (m *MockLogger) addLog(level, msg string, keysAndValues ...interface{}) {
	all := append(append([]interface{}{}, m.fields...), keysAndValues...)
	fields := make(map[string]interface{})
	for i := 0; i+1 < len(all); i += 2 {
		fields[fmt.Sprintf("%v", all[i])] = all[i+1]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	*m.logs = append(*m.logs, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

// GetLogs returns a copy of every recorded entry.
func (m *MockLogger) GetLogs() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(*m.logs))
	copy(out, *m.logs)
	return out
}

// GetLogCount counts entries at a level.
func (m *MockLogger) GetLogCount(level string) int {
	count := 0
	for _, entry := range m.GetLogs() {
		if entry.Level == level {
			count++
		}
	}
	return count
}

// HasMessage reports whether any entry carries the message.
func (m *MockLogger) HasMessage(msg string) bool {
	for _, entry := range m.GetLogs() {
		if entry.Message == msg {
			return true
		}
	}
	return false
}
