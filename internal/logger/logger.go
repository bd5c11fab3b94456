package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Buffer retains the most recent log lines for the dashboard's rolling log.
// It implements io.Writer so it can sit next to the console writer.
type Buffer struct {
	mu    sync.RWMutex
	lines []string
	max   int
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 200
	}
	return &Buffer{max: max}
}

func (b *Buffer) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return len(p), nil
	}
	b.mu.Lock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
	b.mu.Unlock()
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Last returns the most recent line, or "" when nothing was logged yet.
func (b *Buffer) Last() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.lines) == 0 {
		return ""
	}
	return b.lines[len(b.lines)-1]
}

// NewLogger creates a console logger that also feeds the given buffer.
// A nil buffer gives plain console output.
func NewLogger(buf *Buffer) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	if buf != nil {
		ring := zerolog.ConsoleWriter{Out: buf, TimeFormat: "15:04:05", NoColor: true}
		return zerolog.New(zerolog.MultiLevelWriter(console, ring)).With().Timestamp().Logger()
	}
	return zerolog.New(console).With().Timestamp().Logger()
}

// NewLoggerWithLevel creates a logger capped at the given level.
func NewLoggerWithLevel(buf *Buffer, level zerolog.Level) zerolog.Logger {
	return NewLogger(buf).Level(level)
}
