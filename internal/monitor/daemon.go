package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/telemetry"
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
)

// State is the monitoring loop's current phase
type State string

const (
	StateInitializing State = "initializing"
	StateWaiting      State = "waiting"
	StateScanning     State = "scanning"
	StateReporting    State = "reporting"
)

// Source produces listening port snapshots
type Source interface {
	Collect(ctx context.Context) (Snapshot, error)
}

// StartupError means the initial baseline could not be captured
type StartupError struct {
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("failed to capture startup baseline: %v", e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// Daemon runs the scan → diff → report loop. It is single-threaded:
// Run blocks until ctx is cancelled.
type Daemon struct {
	config    DaemonConfig
	source    Source
	detector  *Detector
	responder *Responder
	format    *Formatter
	out       io.Writer
	logger    *slog.Logger
	state     State

	now    func() time.Time
	notify func(state string) (bool, error)
}

// NewDaemon creates a monitoring daemon. A nil source reads the host's /proc.
func NewDaemon(cfg DaemonConfig, source Source) *Daemon {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if source == nil {
		source = NewCollector(cfg.ProcRoot, cfg.ScanTimeout)
	}

	format := NewFormatter(out, cfg.NoColor)

	var eventLog *EventLog
	if cfg.EventLogPath != "" {
		eventLog = NewEventLog(cfg.EventLogPath)
	}

	return &Daemon{
		config:    cfg,
		source:    source,
		detector:  NewDetector(cfg.Filter),
		responder: NewResponder(out, format, eventLog, cfg.Journal),
		format:    format,
		out:       out,
		logger:    slog.With("component", "daemon"),
		state:     StateInitializing,
		now:       time.Now,
		notify: func(state string) (bool, error) {
			return sddaemon.SdNotify(false, state)
		},
	}
}

// Run captures the startup baseline and then loops until ctx is cancelled.
// It returns a *StartupError if the baseline cannot be captured and nil on shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	d.setState(StateInitializing)

	baseline, err := d.source.Collect(ctx)
	if err != nil {
		telemetry.ScansTotal.WithLabelValues("error").Inc()
		return &StartupError{Err: err}
	}
	telemetry.ScansTotal.WithLabelValues("ok").Inc()
	telemetry.ListeningPorts.Set(float64(len(baseline)))

	d.println(d.format.Started(d.now()))
	d.println(d.format.Baseline(baseline))
	d.println("")

	d.sdNotify(sddaemon.SdNotifyReady)
	watchdog := d.watchdogEnabled()

	defer d.sdNotify(sddaemon.SdNotifyStopping)

	for {
		d.setState(StateWaiting)
		if !d.wait(ctx) {
			d.logger.Info("monitor stopped")
			return nil
		}

		next, ok := d.cycle(ctx, baseline)
		if ctx.Err() != nil {
			d.logger.Info("monitor stopped")
			return nil
		}
		if ok {
			baseline = next
		}

		if watchdog {
			d.sdNotify(sddaemon.SdNotifyWatchdog)
		}

		if d.config.Once {
			return nil
		}
	}
}

// cycle scans, reports and returns the new baseline. ok is false when the
// scan failed and the previous baseline must be kept.
func (d *Daemon) cycle(ctx context.Context, baseline Snapshot) (Snapshot, bool) {
	d.setState(StateScanning)

	current, err := d.source.Collect(ctx)
	if err != nil {
		telemetry.ScansTotal.WithLabelValues("error").Inc()
		if ctx.Err() == nil {
			d.logger.Warn("scan failed", "error", err)
			d.responder.Warn(d.now(), fmt.Sprintf("scan failed: %v", err))
		}
		return baseline, false
	}
	telemetry.ScansTotal.WithLabelValues("ok").Inc()
	telemetry.ListeningPorts.Set(float64(len(current)))

	at := d.now()
	findings := d.detector.Analyze(baseline, current, at)
	if n := d.detector.Suppressed(baseline, current); n > 0 {
		telemetry.SuppressedPortsTotal.Add(float64(n))
		d.logger.Debug("new ports suppressed by filters", "count", n)
	}

	d.setState(StateReporting)
	if err := d.responder.Handle(findings, at); err != nil {
		d.logger.Debug("reporting finished with errors", "error", err)
	}

	// Filtered ports still become part of the baseline
	return current, true
}

// wait blocks for one poll interval; it returns false if ctx was cancelled first
func (d *Daemon) wait(ctx context.Context) bool {
	timer := time.NewTimer(d.config.PollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Daemon) setState(s State) {
	if s == d.state {
		return
	}
	d.logger.Debug("state transition", "from", string(d.state), "to", string(s))
	d.state = s
}

func (d *Daemon) println(line string) {
	fmt.Fprintln(d.out, line)
	flush(d.out)
}

// sdNotify reports to systemd when running under it; outside systemd it is a no-op
func (d *Daemon) sdNotify(state string) {
	if d.notify == nil {
		return
	}
	if _, err := d.notify(state); err != nil {
		d.logger.Debug("sd_notify failed", "state", state, "error", err)
	}
}

func (d *Daemon) watchdogEnabled() bool {
	interval, err := sddaemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return false
	}
	if d.config.PollInterval >= interval {
		d.logger.Warn("poll interval exceeds systemd watchdog timeout",
			"interval", d.config.PollInterval, "watchdog", interval)
	}
	return true
}
