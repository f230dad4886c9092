package monitor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/telemetry"
	"github.com/coreos/go-systemd/v22/journal"
)

// Responder reports findings to the console and the configured sinks
type Responder struct {
	out      io.Writer
	format   *Formatter
	eventLog *EventLog
	journal  bool
	logger   *slog.Logger

	// sendJournal is swapped out in tests
	sendJournal func(message string, priority journal.Priority, vars map[string]string) error
}

// NewResponder creates a responder. eventLog may be nil to disable the event log.
func NewResponder(out io.Writer, format *Formatter, eventLog *EventLog, useJournal bool) *Responder {
	r := &Responder{
		out:         out,
		format:      format,
		eventLog:    eventLog,
		logger:      slog.With("component", "responder"),
		sendJournal: journal.Send,
	}
	if useJournal {
		if journal.Enabled() {
			r.journal = true
		} else {
			r.logger.Warn("journald is not reachable, journal output disabled")
		}
	}
	return r
}

// Handle reports one cycle's findings. Sink failures are printed as warnings
// and returned joined; they never stop the remaining findings from being reported.
func (r *Responder) Handle(findings []Finding, at time.Time) error {
	if len(findings) == 0 {
		r.println(r.format.OK(at))
		return nil
	}

	var errs []error
	for _, finding := range findings {
		telemetry.NewPortsTotal.Inc()
		r.println(r.format.Alert(finding))

		event := NewAlertEvent(finding)

		if r.eventLog != nil {
			if err := r.eventLog.Append(event); err != nil {
				telemetry.EventLogErrorsTotal.Inc()
				r.logger.Warn("event log write failed", "path", r.eventLog.Path(), "port", finding.Port, "error", err)
				r.println(r.format.Warning(at, fmt.Sprintf("could not record port %d: %v", finding.Port, err)))
				errs = append(errs, err)
			}
		}

		if r.journal {
			if err := r.logJournal(event); err != nil {
				r.logger.Warn("journal write failed", "port", finding.Port, "error", err)
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// Warn prints a non-fatal problem to the console
func (r *Responder) Warn(at time.Time, msg string) {
	r.println(r.format.Warning(at, msg))
}

// logJournal sends the event to journald with structured fields
func (r *Responder) logJournal(event AlertEvent) error {
	msg := fmt.Sprintf("New port opened: %d (Process: %s, PID: %d)", event.Port, event.Process, event.PID)
	return r.sendJournal(msg, journal.PriWarning, map[string]string{
		"PORTSTAT_PORT":     strconv.Itoa(event.Port),
		"PORTSTAT_PID":      strconv.Itoa(event.PID),
		"PORTSTAT_PROCESS":  event.Process,
		"PORTSTAT_EVENT_ID": event.ID,
		"PORTSTAT_TYPE":     event.Type,
	})
}

// println writes one line and flushes it so tailing readers see it immediately
func (r *Responder) println(line string) {
	fmt.Fprintln(r.out, line)
	flush(r.out)
}

// flush drains buffered writers; *os.File writes are already unbuffered
func flush(w io.Writer) {
	if f, ok := w.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}
