package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/onecst/onecst/internal/config"
	"github.com/onecst/onecst/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View run logs",
	Long: `View and filter the JSON log written by previous runs.

Rotated log files in the same directory are merged in time order.

Examples:
  # Show the last 50 entries
  1cst logs

  # Show everything from the log directory /var/log/1cst
  1cst logs -l /var/log/1cst -n 0

  # Show warnings and errors of the last day
  1cst logs --level warn --since 24h

  # Show the terminations done on one cluster
  1cst logs --cluster 1d6f3b2a-0c55-4b1f-9f0e-3e6a1c2d4b10 --grep Terminating`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail    int
	logsLevel   string
	logsSince   string
	logsGrep    string
	logsCluster string
	logsJSON    bool
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error/critical)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Show only entries whose message contains this text")
	logsCmd.Flags().StringVar(&logsCluster, "cluster", "", "Show only entries logged for this cluster ID")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "Print entries as a JSON array")
}

func runLogs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir, err := logDir(cfg)
	if err != nil {
		return err
	}

	filter := logging.LogFilter{
		Level:           logsLevel,
		Cluster:         logsCluster,
		MessageContains: logsGrep,
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since duration: %w", err)
		}
		filter.StartTime = time.Now().Add(-d)
	}

	entries, err := logging.AggregateLogs(dir)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	if logsJSON {
		return logging.WriteJSON(out, entries)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No matching log entries")
		return nil
	}
	return logging.WriteText(out, entries)
}
