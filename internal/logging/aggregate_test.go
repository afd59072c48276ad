package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLogLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestAggregateLogs(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := AggregateLogs(t.TempDir()); err == nil {
			t.Error("AggregateLogs() on empty dir succeeded")
		}
	})

	t.Run("merges backups sorted by time and skips garbage", func(t *testing.T) {
		dir := t.TempDir()
		writeLogLines(t, filepath.Join(dir, FileName),
			`{"time":"2024-03-01T10:00:03Z","level":"INFO","msg":"third"}`,
			`not json`,
		)
		writeLogLines(t, filepath.Join(dir, FileName+".1"),
			`{"time":"2024-03-01T10:00:01Z","level":"DEBUG","msg":"first","source":"rac"}`,
			`{"time":"2024-03-01T10:00:02Z","level":"INFO","msg":"second","cluster":"c-1","session":"s-1"}`,
		)
		writeLogLines(t, filepath.Join(dir, FileName+".2.gz"), `ignored`)

		entries, err := AggregateLogs(dir)
		if err != nil {
			t.Fatalf("AggregateLogs() = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("got %d entries, want 3", len(entries))
		}
		for i, msg := range []string{"first", "second", "third"} {
			if entries[i].Message != msg {
				t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, msg)
			}
		}
		if entries[0].Source != "rac" {
			t.Errorf("Source = %q, want rac", entries[0].Source)
		}
		if entries[1].Cluster != "c-1" || entries[1].Attrs["session"] != "s-1" {
			t.Errorf("entries[1] = %+v", entries[1])
		}
	})
}

func TestFilterLogs(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []LogEntry{
		{Timestamp: base, Level: LevelDebug, Message: "rac: session : s-1", Source: "rac"},
		{Timestamp: base.Add(time.Second), Level: LevelInfo, Message: "Terminating session", Cluster: "c-1"},
		{Timestamp: base.Add(2 * time.Second), Level: LevelInfo, Message: "Ignoring session", Cluster: "c-2"},
		{Timestamp: base.Add(3 * time.Second), Level: LevelCritical, Message: "Platform not found"},
	}

	tests := []struct {
		name   string
		filter LogFilter
		want   []string
	}{
		{"empty filter", LogFilter{}, []string{"rac: session : s-1", "Terminating session", "Ignoring session", "Platform not found"}},
		{"level", LogFilter{Level: "warn"}, []string{"Platform not found"}},
		{"cluster", LogFilter{Cluster: "c-1"}, []string{"Terminating session"}},
		{"message", LogFilter{MessageContains: "session"}, []string{"rac: session : s-1", "Terminating session", "Ignoring session"}},
		{"time window", LogFilter{StartTime: base.Add(time.Second), EndTime: base.Add(2 * time.Second)}, []string{"Terminating session", "Ignoring session"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLogs(entries, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Message != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i].Message, tt.want[i])
				}
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	entries := []LogEntry{{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Message:   "Terminating session",
		Cluster:   "c-1",
		Attrs:     map[string]any{"session": "s-1"},
	}}

	var buf bytes.Buffer
	if err := WriteText(&buf, entries); err != nil {
		t.Fatalf("WriteText() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "INFO: Terminating session (cluster=c-1)") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, `{"session":"s-1"}`) {
		t.Errorf("output lacks attrs: %q", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []LogEntry{{Level: LevelWarn, Message: "m"}}); err != nil {
		t.Fatalf("WriteJSON() = %v", err)
	}
	var decoded []LogEntry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Message != "m" {
		t.Errorf("decoded = %+v", decoded)
	}
}
