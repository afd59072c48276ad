// Package orchestrator terminates the user sessions of every cluster served
// by the local administration service.
//
// A run resolves the platform installation, starts the administration
// service, walks the clusters one at a time and stops the service again:
//
//	locate platform -> verify executables -> start service
//	  -> for each cluster: list infobases
//	       -> [deny scheduled jobs, wait]
//	       -> list sessions, terminate those not excluded
//	       -> [allow scheduled jobs]
//	-> stop service
//
// Nothing runs in parallel. A non-zero exit of the administrative client is
// logged and the run moves on: a session that ended after it was listed
// must not keep the remaining sessions alive. A client that cannot be
// started, a service that never answers or a cancelled context aborts the
// run.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/logging"
	"github.com/onecst/onecst/internal/platform"
	"github.com/onecst/onecst/internal/process"
	"github.com/onecst/onecst/internal/rac"
)

// Default timings.
const (
	DefaultStartupDelay         = time.Second
	DefaultStopDelay            = time.Second
	DefaultScheduledJobsTimeout = 60 * time.Second
	DefaultReadyAttempts        = 1
)

// PlatformResolver finds and checks the platform installation.
// *platform.Locator implements it.
type PlatformResolver interface {
	Resolve(supplied string) (string, error)
	Verify(dir string) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Options control a run.
type Options struct {
	// PlatformPath is the installation directory to try before searching.
	PlatformPath string

	ClusterCredentials  rac.Credentials
	InfobaseCredentials rac.Credentials

	// TerminateAll ignores Exclude.
	TerminateAll bool
	// Exclude lists the application kinds left running. Nil means
	// DefaultExclusion.
	Exclude *Exclusion

	// DisableScheduledJobs denies scheduled jobs of every infobase for the
	// duration of the termination and waits ScheduledJobsTimeout for running
	// jobs to finish.
	DisableScheduledJobs bool
	ScheduledJobsTimeout time.Duration

	// StartupDelay is waited after starting the service and between
	// readiness attempts.
	StartupDelay time.Duration
	// StopDelay is waited before the service is stopped.
	StopDelay time.Duration
	// ReadyAttempts bounds how often the first cluster list is tried.
	ReadyAttempts int
}

// DefaultOptions returns Options with the default timings and exclusions.
func DefaultOptions() Options {
	return Options{
		Exclude:              DefaultExclusion(),
		ScheduledJobsTimeout: DefaultScheduledJobsTimeout,
		StartupDelay:         DefaultStartupDelay,
		StopDelay:            DefaultStopDelay,
		ReadyAttempts:        DefaultReadyAttempts,
	}
}

// Orchestrator runs the session termination workflow.
type Orchestrator struct {
	resolver PlatformResolver
	runner   process.Runner
	opts     Options
	logger   *logging.Logger
	sleep    Sleeper
	now      func() time.Time
}

// New creates an Orchestrator.
func New(resolver PlatformResolver, runner process.Runner, opts Options, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExclusion()
	}
	if opts.ReadyAttempts < 1 {
		opts.ReadyAttempts = 1
	}
	return &Orchestrator{
		resolver: resolver,
		runner:   runner,
		opts:     opts,
		logger:   logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// SetSleeper replaces the function used for every wait.
func (o *Orchestrator) SetSleeper(s Sleeper) {
	o.sleep = s
}

// Run executes the workflow once.
func (o *Orchestrator) Run(ctx context.Context) (report *Report, err error) {
	start := o.now()
	report = &Report{}
	defer func() { report.Elapsed = o.now().Sub(start) }()

	o.logger.Info("Started")

	path, err := o.resolver.Resolve(o.opts.PlatformPath)
	if err != nil {
		return report, err
	}
	if err := o.resolver.Verify(path); err != nil {
		return report, err
	}
	report.PlatformPath = path

	client := rac.NewClient(o.runner, platform.ExecutablePath(path, platform.ClientExecutable),
		o.opts.ClusterCredentials, o.opts.InfobaseCredentials)
	o.logger.Debug("Administrative client", "path", client.Path())

	o.logger.Info("Starting RAS")
	svc, err := o.runner.Start(ctx, platform.ExecutablePath(path, platform.ServiceExecutable), "cluster")
	if err != nil {
		return report, err
	}
	defer func() {
		if err != nil {
			o.stopService(svc)
		}
	}()

	if err := o.sleep(ctx, o.opts.StartupDelay); err != nil {
		return report, err
	}

	clusters, err := o.listClusters(ctx, client)
	if err != nil {
		return report, err
	}

	for _, c := range clusters {
		cr, err := o.processCluster(ctx, client, c)
		report.Clusters = append(report.Clusters, cr)
		if err != nil {
			return report, err
		}
	}

	if err := o.sleep(ctx, o.opts.StopDelay); err != nil {
		return report, err
	}
	o.stopService(svc)

	o.logger.Info("Finished",
		"elapsed", fmt.Sprintf("%.2fs", o.now().Sub(start).Seconds()),
		"clusters", len(report.Clusters),
		"terminated", report.Terminated(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
	)
	return report, nil
}

// listClusters doubles as the readiness probe of the administration service.
func (o *Orchestrator) listClusters(ctx context.Context, client *rac.Client) ([]rac.Cluster, error) {
	var lastErr error
	for attempt := 1; attempt <= o.opts.ReadyAttempts; attempt++ {
		clusters, err := client.Clusters(ctx)
		if err == nil {
			return clusters, nil
		}
		lastErr = err
		if attempt == o.opts.ReadyAttempts {
			break
		}
		o.logger.Warn("Administration service is not ready, retrying", "attempt", attempt, "error", err)
		if err := o.sleep(ctx, o.opts.StartupDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %w", errors.ErrServiceNotReady, lastErr)
}

func (o *Orchestrator) processCluster(ctx context.Context, client *rac.Client, c rac.Cluster) (ClusterReport, error) {
	cr := ClusterReport{Cluster: c}
	log := o.logger.WithCluster(c.ID)
	log.Info("Found cluster", "host", c.Host, "port", c.Port, "name", c.Name)

	infobases, err := client.Infobases(ctx, c.ID)
	if err != nil && !o.tolerate(log, err) {
		return cr, err
	}
	cr.Infobases = len(infobases)
	for _, ib := range infobases {
		log.Debug("Found infobase", "infobase", ib.ID, "name", ib.Name)
	}

	if o.opts.DisableScheduledJobs {
		if err := o.setScheduledJobs(ctx, client, log, c.ID, infobases, true); err != nil {
			return cr, err
		}
		log.Info("Waiting for scheduled jobs to finish", "timeout", o.opts.ScheduledJobsTimeout)
		if err := o.sleep(ctx, o.opts.ScheduledJobsTimeout); err != nil {
			return cr, err
		}
	}

	sessions, err := client.Sessions(ctx, c.ID)
	if err != nil && !o.tolerate(log, err) {
		return cr, err
	}
	cr.Sessions = len(sessions)

	for _, s := range sessions {
		attrs := []any{"session", s.ID, "host", s.Host, "user", s.UserName, "app", s.AppID}
		if o.excluded(s) {
			log.Info("Ignoring session", attrs...)
			cr.Skipped++
			continue
		}
		log.Info("Terminating session", attrs...)
		if err := client.TerminateSession(ctx, c.ID, s.ID); err != nil {
			if !o.tolerate(log, err) {
				return cr, err
			}
			cr.Failed++
			continue
		}
		cr.Terminated++
	}

	if o.opts.DisableScheduledJobs {
		if err := o.setScheduledJobs(ctx, client, log, c.ID, infobases, false); err != nil {
			return cr, err
		}
	}
	return cr, nil
}

func (o *Orchestrator) setScheduledJobs(ctx context.Context, client *rac.Client, log *logging.Logger, clusterID string, infobases []rac.Infobase, deny bool) error {
	msg := "Allowing scheduled jobs"
	if deny {
		msg = "Denying scheduled jobs"
	}
	for _, ib := range infobases {
		log.Info(msg, "infobase", ib.ID, "name", ib.Name)
		if err := client.SetScheduledJobsDenied(ctx, clusterID, ib.ID, deny); err != nil && !o.tolerate(log, err) {
			return err
		}
	}
	return nil
}

// tolerate logs a non-zero exit of the administrative client at warning
// level and reports whether the run may go on. Any other error is left to
// the caller.
func (o *Orchestrator) tolerate(log *logging.Logger, err error) bool {
	if !errors.Is(err, errors.ErrCommandFailed) {
		return false
	}
	attrs := []any{"error", err.Error()}
	var cmdErr *errors.CommandError
	if errors.As(err, &cmdErr) {
		attrs = append(attrs, "exit", cmdErr.ExitCode)
		if cmdErr.Output != "" {
			attrs = append(attrs, "output", cmdErr.Output)
		}
	}
	log.Warn("Administrative command failed, continuing", attrs...)
	return true
}

func (o *Orchestrator) excluded(s rac.Session) bool {
	return !o.opts.TerminateAll && o.opts.Exclude.Match(s.AppID)
}

// stopService stops the administration service without waiting for it.
func (o *Orchestrator) stopService(svc *process.Service) {
	if svc.Stopped() {
		return
	}
	o.logger.Info("Closing RAS")
	if err := svc.Stop(); err != nil {
		o.logger.Warn("Failed to stop the administration service", "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
