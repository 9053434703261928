package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	l := New("UDP Receiver")
	l.Info("listening on %s", ":5000")
	l.Warn("unknown message %q", "PING")
	l.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "UDP Receiver: listening on :5000")
	assert.Contains(t, out, "UDP Receiver: WARN: unknown message \"PING\"")
	assert.Contains(t, out, "UDP Receiver: ERROR: boom")
}

func TestStdLoggerDebugGated(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	t.Setenv(DebugEnv, "")
	New("x").Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	t.Setenv(DebugEnv, "1")
	New("x").Debug("shown")
	assert.Contains(t, buf.String(), "x: DEBUG: shown")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("message %d", i)
		}(i)
	}
	wg.Wait()
	l.Warn("careful")

	assert.Len(t, l.Messages(), 11)
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))
	assert.True(t, l.Contains("warn", "care"))
	assert.True(t, l.Contains("", "message 3"))
	assert.False(t, l.Contains("info", "careful"))

	l.Clear()
	assert.Empty(t, l.Messages())
}

func TestNoop(t *testing.T) {
	l := Noop()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
