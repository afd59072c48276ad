package logging

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"
)

var consoleLine = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}\] `)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelDebug, false))

	logger.Info("Found cluster", "cluster", "c-1", "name", "Local cluster")

	line := buf.String()
	if !consoleLine.MatchString(line) {
		t.Fatalf("line %q does not start with a timestamp", line)
	}
	want := `INFO: Found cluster cluster=c-1 name="Local cluster"` + "\n"
	if !strings.HasSuffix(line, want) {
		t.Errorf("line = %q, want suffix %q", line, want)
	}
}

func TestConsoleHandlerAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelDebug, false))

	logger.With("cluster", "c-1").WithGroup("session").Info("skip", "id", "s-1")

	if !strings.Contains(buf.String(), "skip cluster=c-1 session.id=s-1") {
		t.Errorf("line = %q", buf.String())
	}
}

func TestConsoleHandlerCriticalLevel(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelInfo, false)

	r := slog.NewRecord(time.Now(), SlogLevelCritical, "Platform not found", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if !strings.Contains(buf.String(), "CRITICAL: Platform not found") {
		t.Errorf("line = %q", buf.String())
	}
}

func TestConsoleHandlerEnabled(t *testing.T) {
	h := newConsoleHandler(&bytes.Buffer{}, slog.LevelWarn, false)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("INFO enabled at WARN level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("ERROR disabled at WARN level")
	}
}

func TestFanoutHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	f := &fanoutHandler{handlers: []slog.Handler{
		newConsoleHandler(&debugBuf, slog.LevelDebug, false),
		newConsoleHandler(&warnBuf, slog.LevelWarn, false),
	}}
	logger := slog.New(f)

	logger.Debug("trace line")
	logger.Warn("warning line")

	if !strings.Contains(debugBuf.String(), "trace line") || !strings.Contains(debugBuf.String(), "warning line") {
		t.Errorf("debug sink = %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "trace line") {
		t.Errorf("warn sink received debug line: %q", warnBuf.String())
	}
	if !strings.Contains(warnBuf.String(), "warning line") {
		t.Errorf("warn sink = %q", warnBuf.String())
	}
}
