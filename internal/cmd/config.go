package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onecst/onecst/internal/config"
	"github.com/onecst/onecst/internal/platform"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View 1cst configuration",
	Long: `View the effective 1cst configuration.

Values come from, in order of precedence: command-line flags, ONECST_*
environment variables, the config file and built-in defaults.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/1cst/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", used)
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n\n")
	}

	root := cfg.Platform.Root
	if root == "" {
		root = platform.DefaultRoot() + " (default)"
	}
	fmt.Fprintln(out, "platform:")
	fmt.Fprintf(out, "  path: %s\n", cfg.Platform.Path)
	fmt.Fprintf(out, "  root: %s\n", root)

	writeCredentials(out, "cluster", cfg.Cluster)
	writeCredentials(out, "infobase", cfg.Infobase)

	fmt.Fprintln(out, "sessions:")
	fmt.Fprintf(out, "  terminate_all: %v\n", cfg.Sessions.TerminateAll)
	fmt.Fprintf(out, "  exclude: [%s]\n", strings.Join(cfg.Sessions.Exclude, ", "))

	fmt.Fprintln(out, "scheduled_jobs:")
	fmt.Fprintf(out, "  disable: %v\n", cfg.ScheduledJobs.Disable)
	fmt.Fprintf(out, "  timeout: %d\n", cfg.ScheduledJobs.TimeoutSeconds)

	fmt.Fprintln(out, "service:")
	fmt.Fprintf(out, "  startup_delay: %s\n", cfg.Service.StartupDelay)
	fmt.Fprintf(out, "  stop_delay: %s\n", cfg.Service.StopDelay)
	fmt.Fprintf(out, "  ready_attempts: %d\n", cfg.Service.ReadyAttempts)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  dir: %s\n", cfg.Logging.Dir)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)
	fmt.Fprintf(out, "  compress: %v\n", cfg.Logging.Compress)

	return nil
}

func writeCredentials(out io.Writer, section string, c config.CredentialsConfig) {
	password := ""
	if c.Password != "" {
		password = "********"
	}
	fmt.Fprintf(out, "%s:\n", section)
	fmt.Fprintf(out, "  user: %s\n", c.User)
	fmt.Fprintf(out, "  password: %s\n", password)
}

const defaultConfigContent = `# 1cst configuration

# Platform installation. When path is empty or does not contain the
# administration executables, the highest version under root is used.
platform:
  path: ""
  root: ""

# Cluster administrator, passed to every cluster command
cluster:
  user: ""
  password: ""

# Infobase administrator, passed when scheduled jobs are denied or allowed
infobase:
  user: ""
  password: ""

sessions:
  # Terminate every session, including the excluded kinds
  terminate_all: false
  # Application kinds left running (glob patterns)
  exclude:
    - BackgroundJob
    - COMConnection

scheduled_jobs:
  # Deny scheduled jobs while sessions are terminated
  disable: false
  # Seconds running jobs get to finish after being denied
  timeout: 60

# Administration service timing (advanced)
service:
  startup_delay: 1s
  stop_delay: 1s
  ready_attempts: 1

logging:
  # Directory receiving 1cst.log (empty = working directory)
  dir: ""
  level: info
  max_size_mb: 5
  max_backups: 5
  compress: false
`

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Credentials may end up in this file
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: ONECST_* (e.g., ONECST_CLUSTER_PASSWORD)")

	return nil
}
