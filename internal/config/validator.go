package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scheduled_jobs.timeout")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSessions()...)
	errors = append(errors, c.validateScheduledJobs()...)
	errors = append(errors, c.validateService()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateSessions checks that every exclusion pattern compiles
func (c *Config) validateSessions() []ValidationError {
	var errors []ValidationError

	for i, pattern := range c.Sessions.Exclude {
		field := fmt.Sprintf("sessions.exclude[%d]", i)
		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   pattern,
				Message: "cannot be empty",
			})
			continue
		}
		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	return errors
}

// validateScheduledJobs validates the ScheduledJobsConfig
func (c *Config) validateScheduledJobs() []ValidationError {
	var errors []ValidationError

	if c.ScheduledJobs.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduled_jobs.timeout",
			Value:   c.ScheduledJobs.TimeoutSeconds,
			Message: "must be non-negative",
		})
	}

	// A day is far beyond any reasonable drain window
	const maxTimeoutSeconds = 24 * 60 * 60
	if c.ScheduledJobs.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "scheduled_jobs.timeout",
			Value:   c.ScheduledJobs.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeoutSeconds),
		})
	}

	return errors
}

// validateService validates the ServiceConfig
func (c *Config) validateService() []ValidationError {
	var errors []ValidationError

	if c.Service.StartupDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "service.startup_delay",
			Value:   c.Service.StartupDelay,
			Message: "must be non-negative",
		})
	}
	if c.Service.StopDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "service.stop_delay",
			Value:   c.Service.StopDelay,
			Message: "must be non-negative",
		})
	}

	const maxReadyAttempts = 100
	if c.Service.ReadyAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "service.ready_attempts",
			Value:   c.Service.ReadyAttempts,
			Message: "must be at least 1",
		})
	}
	if c.Service.ReadyAttempts > maxReadyAttempts {
		errors = append(errors, ValidationError{
			Field:   "service.ready_attempts",
			Value:   c.Service.ReadyAttempts,
			Message: fmt.Sprintf("exceeds maximum of %d", maxReadyAttempts),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be at least 1",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
