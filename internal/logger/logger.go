// Package logger provides the small logging interface shared by phone2pc
// components. Output goes through the standard log package with a
// "Component: message" prefix.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// DebugEnv enables Debug output when set to any non-empty value.
const DebugEnv = "PHONE2PC_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type stdLogger struct {
	prefix string
	debug  bool
}

// New creates a logger that prefixes every line with component, e.g.
// New("UDP Receiver") logs "UDP Receiver: listening on :5000".
func New(component string) Logger {
	prefix := ""
	if component != "" {
		prefix = component + ": "
	}
	return &stdLogger{prefix: prefix, debug: os.Getenv(DebugEnv) != ""}
}

func (l *stdLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		log.Printf(l.prefix+"DEBUG: "+format, args...)
	}
}

func (l *stdLogger) Info(format string, args ...interface{}) {
	log.Printf(l.prefix+format, args...)
}

func (l *stdLogger) Warn(format string, args ...interface{}) {
	log.Printf(l.prefix+"WARN: "+format, args...)
}

func (l *stdLogger) Error(format string, args ...interface{}) {
	log.Printf(l.prefix+"ERROR: "+format, args...)
}

type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(format string, args ...interface{}) {}
func (noopLogger) Info(format string, args ...interface{})  {}
func (noopLogger) Warn(format string, args ...interface{})  {}
func (noopLogger) Error(format string, args ...interface{}) {}

// Message is a captured log line.
type Message struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for test assertions.
// It is safe for use from several goroutines.
type BufferLogger struct {
	mu       sync.Mutex
	messages []Message
}

// NewBufferLogger creates an empty BufferLogger.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	l.messages = append(l.messages, Message{Level: level, Message: fmt.Sprintf(format, args...)})
	l.mu.Unlock()
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// Messages returns a copy of everything logged so far.
func (l *BufferLogger) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasLevel reports whether any message was logged at level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages() {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Contains reports whether any message at level contains substr.
// An empty level matches every level.
func (l *BufferLogger) Contains(level, substr string) bool {
	for _, m := range l.Messages() {
		if (level == "" || m.Level == level) && strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	l.messages = nil
	l.mu.Unlock()
}
