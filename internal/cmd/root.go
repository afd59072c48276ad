package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/onecst/onecst/internal/config"
	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/logging"
	"github.com/onecst/onecst/internal/orchestrator"
	"github.com/onecst/onecst/internal/platform"
	"github.com/onecst/onecst/internal/process"
)

// Version is the release reported by --version. Overridden at build time
// with -ldflags "-X github.com/onecst/onecst/internal/cmd.Version=...".
var Version = "1.0.0.4"

var rootCmd = &cobra.Command{
	Use:   "1cst",
	Short: "1C server session termination",
	Long: `1cst terminates the user sessions of every cluster served by the local
1C:Enterprise server.

It starts the administration service (ras), lists clusters and sessions with
the administration client (rac) and terminates every session except
background jobs and COM connections. The administration service is stopped
when the run ends.

Examples:
  # Terminate interactive sessions using the newest installed platform
  1cst

  # Use a specific platform and cluster administrator
  1cst -P /opt/1cv8/x86_64/8.3.20.1549 -u admin -p secret

  # Deny scheduled jobs, give running ones two minutes, terminate everything
  1cst -d -t 120 -a`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Overridable for tests.
var (
	newRunner = func(logger *logging.Logger) process.Runner { return process.NewCLIRunner(logger) }
	newFs     = afero.NewOsFs
)

// loggedError marks an error already written to the log so Execute does not
// print it a second time.
type loggedError struct {
	err error
}

func (e loggedError) Error() string { return e.err.Error() }
func (e loggedError) Unwrap() error { return e.err }

// Execute runs the root command. Interrupting the process cancels the run;
// the administration service is still stopped.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var logged loggedError
	if err != nil && !errors.As(err, &logged) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetVersionTemplate("1cst {{.Version}}\n")

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/1cst/config.yaml)")
	rootCmd.PersistentFlags().StringP("log", "l", "", "log directory (default is working directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose mode")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.dir", rootCmd.PersistentFlags().Lookup("log"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	flags := rootCmd.Flags()
	flags.StringP("platform-path", "P", "", "platform installation path")
	flags.StringP("cluster-user", "u", "", "cluster administrator")
	flags.StringP("cluster-password", "p", "", "cluster administrator password")
	flags.StringP("infobase-user", "U", "", "infobase administrator")
	flags.StringP("infobase-password", "W", "", "infobase administrator password")
	flags.BoolP("all", "a", false, "terminate all sessions (including COM connections and background jobs)")
	flags.BoolP("disable-scheduled-jobs", "d", false, "deny scheduled jobs while sessions are terminated")
	flags.IntP("timeout", "t", 60, "seconds to wait for scheduled jobs to finish after denying them")
	flags.BoolP("version", "V", false, "display version")

	_ = viper.BindPFlag("platform.path", flags.Lookup("platform-path"))
	_ = viper.BindPFlag("cluster.user", flags.Lookup("cluster-user"))
	_ = viper.BindPFlag("cluster.password", flags.Lookup("cluster-password"))
	_ = viper.BindPFlag("infobase.user", flags.Lookup("infobase-user"))
	_ = viper.BindPFlag("infobase.password", flags.Lookup("infobase-password"))
	_ = viper.BindPFlag("sessions.terminate_all", flags.Lookup("all"))
	_ = viper.BindPFlag("scheduled_jobs.disable", flags.Lookup("disable-scheduled-jobs"))
	_ = viper.BindPFlag("scheduled_jobs.timeout", flags.Lookup("timeout"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ONECST")
	// Replace dots with underscores for nested keys in env vars
	// e.g., ONECST_CLUSTER_PASSWORD for cluster.password
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

func runRoot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if viper.GetBool("verbose") {
		cfg.Logging.Level = logging.LevelDebug
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	if wd, err := os.Getwd(); err == nil {
		logger.Debug("Working directory", "path", wd)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("Config file", "path", used)
	}
	logger.Debug("Log file", "path", logger.FilePath())

	opts, err := orchestratorOptions(cfg)
	if err != nil {
		return reportFailure(logger, err)
	}
	logger.Debug("Options",
		"platform_path", opts.PlatformPath,
		"cluster_user", opts.ClusterCredentials.User,
		"infobase_user", opts.InfobaseCredentials.User,
		"terminate_all", opts.TerminateAll,
		"exclude", strings.Join(opts.Exclude.Patterns(), ","),
		"disable_scheduled_jobs", opts.DisableScheduledJobs,
		"timeout", opts.ScheduledJobsTimeout,
	)

	locator := platform.NewLocator(newFs(), cfg.Platform.Root, logger)
	logger.Debug("Platform root", "path", locator.Root())
	o := orchestrator.New(locator, newRunner(logger), opts, logger)
	if _, err := o.Run(cmd.Context()); err != nil {
		return reportFailure(logger, err)
	}
	return nil
}

// reportFailure logs the full error chain at debug level and a short line
// at critical level for fatal errors, error level otherwise.
func reportFailure(logger *logging.Logger, err error) error {
	logger.Debug("Run failed", "error", err.Error(), "severity", errors.GetSeverity(err).String())
	if errors.IsFatal(err) {
		logger.Critical(errors.UserMessage(err))
	} else {
		logger.Error(errors.UserMessage(err))
	}
	return loggedError{err: err}
}

func orchestratorOptions(cfg *config.Config) (orchestrator.Options, error) {
	exclude, err := orchestrator.NewExclusion(cfg.Sessions.Exclude...)
	if err != nil {
		return orchestrator.Options{}, err
	}
	opts := orchestrator.DefaultOptions()
	opts.PlatformPath = cfg.Platform.Path
	opts.ClusterCredentials = cfg.Cluster.Credentials()
	opts.InfobaseCredentials = cfg.Infobase.Credentials()
	opts.TerminateAll = cfg.Sessions.TerminateAll
	opts.Exclude = exclude
	opts.DisableScheduledJobs = cfg.ScheduledJobs.Disable
	opts.ScheduledJobsTimeout = cfg.ScheduledJobs.Timeout()
	opts.StartupDelay = cfg.Service.StartupDelay
	opts.StopDelay = cfg.Service.StopDelay
	opts.ReadyAttempts = cfg.Service.ReadyAttempts
	return opts, nil
}

// newLogger writes JSON lines to the log directory and human-readable lines
// to console, coloured when console is a terminal.
func newLogger(cfg *config.Config, console io.Writer) (*logging.Logger, error) {
	dir, err := logDir(cfg)
	if err != nil {
		return nil, err
	}

	color := false
	if f, ok := console.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	return logging.NewLogger(logging.Options{
		Dir:      dir,
		Level:    cfg.Logging.Level,
		Rotation: cfg.Logging.Rotation(),
		Console:  console,
		Color:    color,
	})
}

func logDir(cfg *config.Config) (string, error) {
	if cfg.Logging.Dir != "" {
		return cfg.Logging.Dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
