//go:build unix

package process

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/logging"
)

func newTraceLogger(t *testing.T) (*logging.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.NewLogger(logging.Options{Level: logging.LevelDebug, Console: &buf})
	if err != nil {
		t.Fatalf("NewLogger() = %v", err)
	}
	return logger, &buf
}

func TestCLIRunnerRun(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"single line", "echo cluster : c-1", "cluster : c-1"},
		{"blank lines dropped", "echo; echo '  a  '; echo; echo b", "a\nb"},
		{"stderr merged", "echo out; echo err >&2", "out\nerr"},
		{"no output", "true", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCLIRunner(nil)
			got, err := r.Run(context.Background(), "sh", "-c", tt.script)
			if err != nil {
				t.Fatalf("Run() = %v", err)
			}
			if got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIRunnerTracesLines(t *testing.T) {
	logger, buf := newTraceLogger(t)
	r := NewCLIRunner(logger)

	if _, err := r.Run(context.Background(), "/bin/sh", "-c", "echo 'session : s-1'"); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !strings.Contains(buf.String(), `DEBUG: "session : s-1" source=sh`) &&
		!strings.Contains(buf.String(), "DEBUG: session : s-1 source=sh") {
		t.Errorf("trace = %q", buf.String())
	}
}

func TestCLIRunnerRedactsPasswords(t *testing.T) {
	logger, buf := newTraceLogger(t)
	r := NewCLIRunner(logger)

	if _, err := r.Run(context.Background(), "sh", "-c", "true", "sh", "--cluster-pwd=secret"); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Errorf("password leaked into log: %q", buf.String())
	}
}

func TestCLIRunnerMissingExecutable(t *testing.T) {
	r := NewCLIRunner(nil)

	_, err := r.Run(context.Background(), "/nonexistent/8.3.20/rac", "cluster", "list")
	if !errors.Is(err, errors.ErrCommandStart) {
		t.Fatalf("Run() = %v, want ErrCommandStart", err)
	}
	var cmdErr *errors.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() = %T, want *CommandError", err)
	}
	if cmdErr.Executable != "rac" {
		t.Errorf("Executable = %q, want rac", cmdErr.Executable)
	}
}

func TestCLIRunnerNonZeroExit(t *testing.T) {
	r := NewCLIRunner(nil)

	out, err := r.Run(context.Background(), "sh", "-c", "echo 'Cluster administrator is not authenticated'; exit 3")
	if !errors.Is(err, errors.ErrCommandFailed) {
		t.Fatalf("Run() = %v, want ErrCommandFailed", err)
	}
	var cmdErr *errors.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() = %T, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if out != "Cluster administrator is not authenticated" || cmdErr.Output != out {
		t.Errorf("output = %q, Output = %q", out, cmdErr.Output)
	}
}

func TestCLIRunnerStartStop(t *testing.T) {
	r := NewCLIRunner(nil)

	svc, err := r.Start(context.Background(), "sleep", "30")
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if svc.Name() != "sleep" {
		t.Errorf("Name() = %q, want sleep", svc.Name())
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("second Stop() = %v, want nil", err)
	}

	select {
	case <-svc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("service did not exit after Stop")
	}
}

func TestCLIRunnerStartMissingExecutable(t *testing.T) {
	r := NewCLIRunner(nil)

	if _, err := r.Start(context.Background(), "/nonexistent/ras", "cluster"); !errors.Is(err, errors.ErrCommandStart) {
		t.Errorf("Start() = %v, want ErrCommandStart", err)
	}
}

func TestCLIRunnerStartDrainsOutput(t *testing.T) {
	logger, buf := newTraceLogger(t)
	r := NewCLIRunner(logger)

	svc, err := r.Start(context.Background(), "sh", "-c", "echo listening")
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	select {
	case <-svc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("service output was not drained")
	}
	if !strings.Contains(buf.String(), "listening source=sh") {
		t.Errorf("trace = %q", buf.String())
	}
}
