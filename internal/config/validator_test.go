package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default config has validation errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "empty exclusion pattern",
			modify:    func(c *Config) { c.Sessions.Exclude = []string{"BackgroundJob", " "} },
			wantField: "sessions.exclude[1]",
		},
		{
			name:      "malformed exclusion pattern",
			modify:    func(c *Config) { c.Sessions.Exclude = []string{"[Designer"} },
			wantField: "sessions.exclude[0]",
		},
		{
			name:      "negative scheduled job timeout",
			modify:    func(c *Config) { c.ScheduledJobs.TimeoutSeconds = -5 },
			wantField: "scheduled_jobs.timeout",
		},
		{
			name:      "huge scheduled job timeout",
			modify:    func(c *Config) { c.ScheduledJobs.TimeoutSeconds = 1 << 20 },
			wantField: "scheduled_jobs.timeout",
		},
		{
			name:      "negative startup delay",
			modify:    func(c *Config) { c.Service.StartupDelay = -time.Second },
			wantField: "service.startup_delay",
		},
		{
			name:      "negative stop delay",
			modify:    func(c *Config) { c.Service.StopDelay = -time.Second },
			wantField: "service.stop_delay",
		},
		{
			name:      "zero ready attempts",
			modify:    func(c *Config) { c.Service.ReadyAttempts = 0 },
			wantField: "service.ready_attempts",
		},
		{
			name:      "too many ready attempts",
			modify:    func(c *Config) { c.Service.ReadyAttempts = 1000 },
			wantField: "service.ready_attempts",
		},
		{
			name:      "unknown log level",
			modify:    func(c *Config) { c.Logging.Level = "trace" },
			wantField: "logging.level",
		},
		{
			name:      "zero log size",
			modify:    func(c *Config) { c.Logging.MaxSizeMB = 0 },
			wantField: "logging.max_size_mb",
		},
		{
			name:      "negative backups",
			modify:    func(c *Config) { c.Logging.MaxBackups = -1 },
			wantField: "logging.max_backups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_AcceptsUppercaseLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "DEBUG"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}
