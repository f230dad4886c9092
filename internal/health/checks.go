package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/config"
	"github.com/Alexander-50/Port-Stat/internal/monitor"
	"github.com/coreos/go-systemd/v22/journal"
)

// CheckSocketTables verifies that a baseline snapshot can be captured
func CheckSocketTables(ctx context.Context, procRoot string, timeout time.Duration) (HealthCheck, monitor.Snapshot) {
	snapshot, err := monitor.NewCollector(procRoot, timeout).Collect(ctx)
	if err != nil {
		msg := fmt.Sprintf("Cannot enumerate listening ports: %v", err)
		if errors.Is(err, monitor.ErrUnsupportedPlatform) {
			msg = "Listening port enumeration needs Linux /proc"
		}
		return HealthCheck{
			Name:    "socket_tables",
			Status:  StatusFailed,
			Message: msg,
		}, nil
	}

	return HealthCheck{
		Name:    "socket_tables",
		Status:  StatusOK,
		Message: fmt.Sprintf("%d listening ports", len(snapshot)),
		Details: map[string]interface{}{
			"proc_root": procRoot,
			"ports":     len(snapshot),
		},
	}, snapshot
}

// CheckOwnerVisibility reports how many listening ports have an unresolved owner.
// Without root, sockets held by other users show up as Unknown.
func CheckOwnerVisibility(snapshot monitor.Snapshot) HealthCheck {
	if snapshot == nil {
		return HealthCheck{
			Name:    "process_owners",
			Status:  StatusWarning,
			Message: "Skipped (no snapshot)",
		}
	}

	unknown := 0
	for _, owner := range snapshot {
		if owner.Name == monitor.UnknownProcess {
			unknown++
		}
	}

	if unknown > 0 {
		return HealthCheck{
			Name:    "process_owners",
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d of %d ports have an unknown owner (run as root to resolve)", unknown, len(snapshot)),
			Details: map[string]interface{}{
				"unknown": unknown,
			},
		}
	}

	return HealthCheck{
		Name:    "process_owners",
		Status:  StatusOK,
		Message: "All owners resolved",
	}
}

// CheckEventLog verifies the JSON event log can be appended to, without writing to it
func CheckEventLog(path string) HealthCheck {
	if path == "" {
		return HealthCheck{
			Name:    "event_log",
			Status:  StatusOK,
			Message: "Disabled",
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return HealthCheck{
			Name:    "event_log",
			Status:  StatusFailed,
			Message: fmt.Sprintf("Cannot create directory for %s: %v", path, err),
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return HealthCheck{
			Name:    "event_log",
			Status:  StatusFailed,
			Message: fmt.Sprintf("%s is not writable", path),
		}
	}
	file.Close()

	return HealthCheck{
		Name:    "event_log",
		Status:  StatusOK,
		Message: fmt.Sprintf("%s (writable)", path),
		Details: map[string]interface{}{
			"path": path,
		},
	}
}

// CheckJournal verifies journald is reachable when journal output is requested
func CheckJournal(enabled bool) HealthCheck {
	if !enabled {
		return HealthCheck{
			Name:    "journal",
			Status:  StatusOK,
			Message: "Disabled",
		}
	}

	if !journal.Enabled() {
		return HealthCheck{
			Name:    "journal",
			Status:  StatusWarning,
			Message: "journald socket not reachable, alerts will only go to the console",
		}
	}

	return HealthCheck{
		Name:    "journal",
		Status:  StatusOK,
		Message: "journald reachable",
	}
}

// CheckMetricsAddr verifies the metrics address can be bound
func CheckMetricsAddr(addr string) HealthCheck {
	if addr == "" {
		return HealthCheck{
			Name:    "metrics",
			Status:  StatusOK,
			Message: "Disabled",
		}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return HealthCheck{
			Name:    "metrics",
			Status:  StatusFailed,
			Message: fmt.Sprintf("Cannot listen on %s: %v", addr, err),
		}
	}
	ln.Close()

	return HealthCheck{
		Name:    "metrics",
		Status:  StatusOK,
		Message: fmt.Sprintf("%s available", addr),
	}
}

// CheckConfiguration reports which config files were loaded. extraPath is the
// file given with --config, if any.
func CheckConfiguration(cfg *config.Config, extraPath string) HealthCheck {
	if cfg == nil {
		return HealthCheck{
			Name:    "config",
			Status:  StatusFailed,
			Message: "Configuration not loaded",
		}
	}

	var loadedFrom []string
	paths := config.GetConfigPaths()
	if extraPath != "" {
		paths = append(paths, extraPath)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			loadedFrom = append(loadedFrom, path)
		}
	}

	message := "Defaults only (no config files)"
	if len(loadedFrom) > 0 {
		message = loadedFrom[len(loadedFrom)-1] // Show highest priority
	}

	return HealthCheck{
		Name:    "config",
		Status:  StatusOK,
		Message: message,
		Details: map[string]interface{}{
			"loaded_from": loadedFrom,
			"interval":    cfg.Monitor.IntervalSeconds,
		},
	}
}

// RunAll runs every check against cfg
func RunAll(ctx context.Context, cfg *config.Config, extraPath string) Report {
	tables, snapshot := CheckSocketTables(ctx, cfg.Monitor.ProcRoot, cfg.Monitor.ScanTimeout.Duration)

	return NewReport([]HealthCheck{
		CheckConfiguration(cfg, extraPath),
		tables,
		CheckOwnerVisibility(snapshot),
		CheckEventLog(cfg.Output.JSONLog),
		CheckJournal(config.Enabled(cfg.Output.Journal)),
		CheckMetricsAddr(cfg.Metrics.Addr),
	})
}
