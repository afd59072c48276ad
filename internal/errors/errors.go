// Package errors provides centralized error definitions and error handling utilities
// for 1cst. It defines sentinel errors, the domain error types raised while
// driving the administration tools, and classification helpers used by the
// command layer to decide how an error is reported.
//
// # Error Types
//
// Domain-specific errors:
//   - PlatformError: the platform installation or one of its executables is missing
//   - CommandError: an administrative executable could not be started or failed
//
// Semantic errors:
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewPlatformError("platform not found", errors.ErrPlatformNotFound).
//		WithPath("/opt/1cv8/x86_64")
//
//	err := errors.NewCommandError("session list failed", errors.ErrCommandFailed).
//		WithExecutable("rac").WithExitCode(1).WithOutput(output)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrExecutableNotFound) { ... }
//
//	var cmdErr *errors.CommandError
//	if errors.As(err, &cmdErr) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Severity: Debug, Info, Warning, Error, Critical
//   - Fatal: raised before the administration service was started
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that stop the run before any session is touched.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Platform-related sentinel errors
var (
	// ErrPlatformNotFound indicates that no platform installation could be located.
	ErrPlatformNotFound = New("platform not found")
	// ErrExecutableNotFound indicates that a required executable is missing.
	ErrExecutableNotFound = New("executable not found")
)

// Command-related sentinel errors
var (
	// ErrCommandStart indicates that a child process could not be started.
	ErrCommandStart = New("command could not be started")
	// ErrCommandFailed indicates that a child process exited unsuccessfully.
	ErrCommandFailed = New("command failed")
	// ErrServiceNotReady indicates that the administration service never answered.
	ErrServiceNotReady = New("administration service not ready")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// AppError is the base interface for all 1cst errors.
type AppError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message  string
	cause    error
	severity Severity
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// PlatformError represents a missing or unusable platform installation.
// It is always critical: nothing can be done without the executables.
//
// Example:
//
//	err := errors.NewPlatformError("required executable is missing", errors.ErrExecutableNotFound)
//	err = err.WithPath("/opt/1cv8/x86_64/8.3.20").WithExecutable("rac")
//	fmt.Println(err) // "platform error [path=/opt/1cv8/x86_64/8.3.20, executable=rac]: required executable is missing: executable not found"
type PlatformError struct {
	baseError
	Path       string
	Executable string
}

// NewPlatformError creates a new PlatformError.
func NewPlatformError(message string, cause error) *PlatformError {
	return &PlatformError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
		},
	}
}

// WithPath adds the inspected directory to the error context.
func (e *PlatformError) WithPath(path string) *PlatformError {
	e.Path = path
	return e
}

// WithExecutable adds the missing executable name to the error context.
func (e *PlatformError) WithExecutable(name string) *PlatformError {
	e.Executable = name
	return e
}

// Error returns the formatted error message.
func (e *PlatformError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Executable != "" {
		parts = append(parts, fmt.Sprintf("executable=%s", e.Executable))
	}

	prefix := "platform error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("platform error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PlatformError) Is(target error) bool {
	if _, ok := target.(*PlatformError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// CommandError represents a failed invocation of an administrative executable.
//
// Example:
//
//	err := errors.NewCommandError("rac exited unsuccessfully", errors.ErrCommandFailed)
//	err = err.WithExecutable("rac").WithExitCode(255).WithOutput("Ошибка соединения с сервером")
type CommandError struct {
	baseError
	Executable string
	ExitCode   int
	Output     string // Captured combined output
}

// NewCommandError creates a new CommandError.
func NewCommandError(message string, cause error) *CommandError {
	return &CommandError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
		ExitCode: -1, // -1 indicates not set
	}
}

// WithExecutable adds the executable base name to the error context.
func (e *CommandError) WithExecutable(name string) *CommandError {
	e.Executable = name
	return e
}

// WithExitCode adds the process exit code to the error context.
func (e *CommandError) WithExitCode(code int) *CommandError {
	e.ExitCode = code
	return e
}

// WithOutput adds the captured command output to the error context.
func (e *CommandError) WithOutput(output string) *CommandError {
	e.Output = output
	return e
}

// Error returns the formatted error message.
func (e *CommandError) Error() string {
	var parts []string
	if e.Executable != "" {
		parts = append(parts, fmt.Sprintf("executable=%s", e.Executable))
	}
	if e.ExitCode >= 0 {
		parts = append(parts, fmt.Sprintf("exit=%d", e.ExitCode))
	}

	prefix := "command error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("command error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Output != "" {
		// Only the last line; the full output is already traced line by line.
		lines := strings.Split(e.Output, "\n")
		msg = fmt.Sprintf("%s (%s)", msg, lines[len(lines)-1])
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *CommandError) Is(target error) bool {
	if _, ok := target.(*CommandError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("timeout must be non-negative")
//	err = err.WithField("scheduled_jobs.timeout").WithValue(-5)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityCritical,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement AppError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var appErr AppError
	if As(err, &appErr) {
		return appErr.Severity()
	}

	return SeverityError
}

// IsFatal returns true for errors raised before the administration service
// was started: a missing platform, a missing executable or invalid input.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var platformErr *PlatformError
	var validationErr *ValidationError
	return As(err, &platformErr) || As(err, &validationErr)
}

// UserMessage returns the short message for the outermost user-facing error
// in the chain, falling back to the full error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var platformErr *PlatformError
	if As(err, &platformErr) {
		if platformErr.Executable != "" {
			return fmt.Sprintf("%s: %s", platformErr.message, platformErr.Executable)
		}
		return platformErr.message
	}

	var cmdErr *CommandError
	if As(err, &cmdErr) {
		return cmdErr.Error()
	}

	return err.Error()
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this returns nil for a nil error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
