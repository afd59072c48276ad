package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/onecst/onecst/internal/logging"
	"github.com/onecst/onecst/internal/rac"
)

// Config represents the complete 1cst configuration
type Config struct {
	Platform      PlatformConfig      `mapstructure:"platform"`
	Cluster       CredentialsConfig   `mapstructure:"cluster"`
	Infobase      CredentialsConfig   `mapstructure:"infobase"`
	Sessions      SessionsConfig      `mapstructure:"sessions"`
	ScheduledJobs ScheduledJobsConfig `mapstructure:"scheduled_jobs"`
	Service       ServiceConfig       `mapstructure:"service"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// PlatformConfig controls where the platform installation is looked for
type PlatformConfig struct {
	// Path is the installation directory holding the executables.
	// When empty or invalid, the highest version under Root is used.
	Path string `mapstructure:"path"`
	// Root is the directory scanned for versions (empty = OS default)
	Root string `mapstructure:"root"`
}

// CredentialsConfig is an administrator login
type CredentialsConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Credentials converts the login for the administrative client
func (c CredentialsConfig) Credentials() rac.Credentials {
	return rac.Credentials{User: c.User, Password: c.Password}
}

// SessionsConfig controls which sessions are terminated
type SessionsConfig struct {
	// TerminateAll terminates every session, ignoring Exclude
	TerminateAll bool `mapstructure:"terminate_all"`
	// Exclude lists glob patterns of application identifiers left running
	Exclude []string `mapstructure:"exclude"`
}

// ScheduledJobsConfig controls scheduled job handling during termination
type ScheduledJobsConfig struct {
	// Disable denies scheduled jobs of every infobase while sessions are terminated
	Disable bool `mapstructure:"disable"`
	// TimeoutSeconds is how long running jobs get to finish after being denied
	TimeoutSeconds int `mapstructure:"timeout"`
}

// Timeout returns the drain window as a time.Duration
func (c *ScheduledJobsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServiceConfig controls the administration service lifecycle
type ServiceConfig struct {
	// StartupDelay is waited after starting the service (e.g. "1s", "500ms")
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	// StopDelay is waited before stopping the service
	StopDelay time.Duration `mapstructure:"stop_delay"`
	// ReadyAttempts bounds how often the first cluster list is tried
	ReadyAttempts int `mapstructure:"ready_attempts"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Dir is the directory receiving 1cst.log (empty = working directory)
	Dir string `mapstructure:"dir"`
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the size in megabytes at which the log file is rotated (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep (default: 5)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress"`
}

// Rotation converts the logging settings for logging.NewLogger
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Sessions: SessionsConfig{
			TerminateAll: false,
			Exclude:      append([]string(nil), rac.DefaultExcludedApps...),
		},
		ScheduledJobs: ScheduledJobsConfig{
			Disable:        false,
			TimeoutSeconds: 60,
		},
		Service: ServiceConfig{
			StartupDelay:  time.Second,
			StopDelay:     time.Second,
			ReadyAttempts: 1,
		},
		Logging: LoggingConfig{
			Dir:        "",
			Level:      "info",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Platform defaults
	viper.SetDefault("platform.path", defaults.Platform.Path)
	viper.SetDefault("platform.root", defaults.Platform.Root)

	// Credentials are empty by default; registered so env vars bind
	viper.SetDefault("cluster.user", defaults.Cluster.User)
	viper.SetDefault("cluster.password", defaults.Cluster.Password)
	viper.SetDefault("infobase.user", defaults.Infobase.User)
	viper.SetDefault("infobase.password", defaults.Infobase.Password)

	// Session defaults
	viper.SetDefault("sessions.terminate_all", defaults.Sessions.TerminateAll)
	viper.SetDefault("sessions.exclude", defaults.Sessions.Exclude)

	// Scheduled job defaults
	viper.SetDefault("scheduled_jobs.disable", defaults.ScheduledJobs.Disable)
	viper.SetDefault("scheduled_jobs.timeout", defaults.ScheduledJobs.TimeoutSeconds)

	// Service defaults
	viper.SetDefault("service.startup_delay", defaults.Service.StartupDelay)
	viper.SetDefault("service.stop_delay", defaults.Service.StopDelay)
	viper.SetDefault("service.ready_attempts", defaults.Service.ReadyAttempts)

	// Logging defaults
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "1cst")
	}
	// Fall back to ~/.config/1cst
	home, err := os.UserHomeDir()
	if err != nil {
		return ".1cst"
	}
	return filepath.Join(home, ".config", "1cst")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
