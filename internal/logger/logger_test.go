package logger

import (
	"fmt"
	"strings"
	"testing"
)

func TestBufferRolls(t *testing.T) {
	buf := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(buf, "line %d\n", i)
	}

	lines := buf.Lines()
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "line 3") || !strings.Contains(lines[2], "line 5") {
		t.Errorf("oldest lines not evicted: %v", lines)
	}
}

func TestBufferLast(t *testing.T) {
	buf := NewBuffer(10)
	fmt.Fprintf(buf, "one\n")
	fmt.Fprintf(buf, "two\n")
	fmt.Fprintf(buf, "three\n")

	if last := buf.Last(); !strings.Contains(last, "three") {
		t.Errorf("Last() = %q", last)
	}
}

func TestBufferLastEmpty(t *testing.T) {
	buf := NewBuffer(10)
	if last := buf.Last(); last != "" {
		t.Errorf("Last() on empty buffer = %q", last)
	}
}

func TestLoggerWritesToBuffer(t *testing.T) {
	buf := NewBuffer(10)
	log := NewLogger(buf)

	log.Info().Str("url", "https://example.com/").Msg("resolving show")

	lines := buf.Lines()
	if len(lines) == 0 {
		t.Fatal("nothing captured")
	}
	if !strings.Contains(lines[0], "resolving show") {
		t.Errorf("captured line = %q", lines[0])
	}
}
