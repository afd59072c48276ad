// Package process runs the administrative executables as child processes.
//
// Standard output and standard error of every child are merged into one
// stream, decoded from the console code page of the host OS and traced line
// by line at debug level with the executable name as the log source.
package process

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/logging"
)

// maxLineSize bounds a single output line read from a child process.
const maxLineSize = 1024 * 1024

// Runner runs administrative executables.
type Runner interface {
	// Run executes name with args, waits for it to exit and returns its
	// trimmed combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// Start launches name with args as a long-lived process and returns
	// immediately. Its output is drained in the background.
	Start(ctx context.Context, name string, args ...string) (*Service, error)
}

// CLIRunner is the Runner backed by os/exec.
type CLIRunner struct {
	logger *logging.Logger
}

// NewCLIRunner creates a CLIRunner. A nil logger discards the output trace.
func NewCLIRunner(logger *logging.Logger) *CLIRunner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &CLIRunner{logger: logger}
}

// Run implements Runner. A child that cannot be started yields a
// CommandError wrapping ErrCommandStart; a non-zero exit yields one wrapping
// ErrCommandFailed with the captured output attached.
func (r *CLIRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	source := SourceName(name)
	r.logger.Debug("Running command", "source", source, "args", strings.Join(RedactArgs(args), " "))

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", errors.NewCommandError("failed to open output pipe", err).WithExecutable(source)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", errors.NewCommandError("failed to start "+source, errors.Join(errors.ErrCommandStart, err)).
			WithExecutable(source)
	}

	output, readErr := collect(decode(stdout), source, r.logger)
	waitErr := cmd.Wait()

	if waitErr != nil {
		cmdErr := errors.NewCommandError(source+" exited unsuccessfully", errors.Join(errors.ErrCommandFailed, waitErr)).
			WithExecutable(source).
			WithOutput(output)
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			cmdErr = cmdErr.WithExitCode(exitErr.ExitCode())
		}
		return output, cmdErr
	}
	if readErr != nil {
		return output, errors.NewCommandError("failed to read output of "+source, readErr).WithExecutable(source)
	}
	return output, nil
}

// Start implements Runner. Cancelling ctx interrupts the process the same
// way Service.Stop does.
func (r *CLIRunner) Start(ctx context.Context, name string, args ...string) (*Service, error) {
	source := SourceName(name)
	r.logger.Debug("Starting service", "source", source, "args", strings.Join(RedactArgs(args), " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewCommandError("failed to open output pipe", err).WithExecutable(source)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, errors.NewCommandError("failed to start "+source, errors.Join(errors.ErrCommandStart, err)).
			WithExecutable(source)
	}

	svc := NewService(source, func() error { return interrupt(cmd.Process) })
	go func() {
		defer svc.markDone()
		_, _ = collect(decode(stdout), source, r.logger)
		if err := cmd.Wait(); err != nil {
			r.logger.Debug("Service exited", "source", source, "error", err)
		}
	}()
	return svc, nil
}

// collect reads r line by line, traces each non-empty trimmed line and
// returns them joined by newlines.
func collect(r io.Reader, source string, logger *logging.Logger) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		logger.Debug(line, "source", source)
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return strings.TrimSpace(b.String()), scanner.Err()
}

// SourceName returns the executable base name without extension, used as
// the log source of its output.
func SourceName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RedactArgs returns a copy of args with password values masked.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		key, _, found := strings.Cut(arg, "=")
		if found && (strings.HasSuffix(key, "-pwd") || strings.HasSuffix(key, "-password")) {
			out[i] = key + "=***"
			continue
		}
		out[i] = arg
	}
	return out
}
