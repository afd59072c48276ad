// Package logging provides structured logging for 1cst runs.
//
// It wraps Go's log/slog with two sinks: JSON lines appended to a size- and
// count-bounded rotating file, and a human-readable console stream. Every
// child process line and every record decision of a run is traced through
// it, so the file doubles as an audit log of which sessions were terminated.
//
// # Basic Usage
//
// Build the logger once at startup from the loaded configuration:
//
//	logger, err := logging.NewLogger(logging.Options{
//	    Dir:      "/var/log/1cst",
//	    Level:    "INFO",
//	    Rotation: logging.DefaultRotationConfig(),
//	    Console:  os.Stderr,
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("Found cluster", "cluster", id, "name", name)
//	logger.WithCluster(id).Info("Terminating session", "session", sid)
//
// File lines look like:
//
//	{"time":"...","level":"INFO","msg":"Terminating session","cluster":"...","session":"..."}
//
// Console lines look like:
//
//	[2024-03-01 10:00:00,000] INFO: Terminating session cluster=... session=...
//
// # Log Rotation
//
// When a write would push the file past RotationConfig.MaxSizeMB, the file
// is renamed to 1cst.log.1, older backups shift up, and anything beyond
// MaxBackups is removed. With Compress set, backups are gzipped.
//
// # Reading Logs
//
// [AggregateLogs] and [FilterLogs] back the "1cst logs" command:
//
//	entries, err := logging.AggregateLogs(dir)
//	entries = logging.FilterLogs(entries, logging.LogFilter{Level: "WARN"})
//	_ = logging.WriteText(os.Stdout, entries)
//
// # Testing
//
// Use [NopLogger] to discard all output.
package logging
