package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/procfs"
)

// ErrUnsupportedPlatform is returned when the host exposes no /proc socket tables
var ErrUnsupportedPlatform = errors.New("listening port enumeration is only supported on Linux")

// Collector captures snapshots of the host's listening ports
type Collector struct {
	procRoot string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewCollector creates a collector reading from procRoot (DefaultProcRoot when empty).
// A positive timeout bounds each Collect call.
func NewCollector(procRoot string, timeout time.Duration) *Collector {
	if procRoot == "" {
		procRoot = DefaultProcRoot
	}
	return &Collector{
		procRoot: procRoot,
		timeout:  timeout,
		logger:   slog.With("component", "collector"),
	}
}

// Collect returns every listening TCP port with its owning process.
// Ports whose owner cannot be inspected are kept under UnknownProcess.
func (c *Collector) Collect(ctx context.Context) (Snapshot, error) {
	if c.procRoot == DefaultProcRoot && !platformSupported() {
		return nil, ErrUnsupportedPlatform
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	fs, err := procfs.NewFS(c.procRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open proc root: %w", err)
	}

	sockets, err := readListenSockets(fs)
	if err != nil {
		return nil, fmt.Errorf("failed to read socket tables: %w", err)
	}

	want := make(map[uint64]struct{}, len(sockets))
	for _, s := range sockets {
		want[s.Inode] = struct{}{}
	}

	owners, err := socketOwners(ctx, fs, want)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve socket owners: %w", err)
	}

	snapshot := make(Snapshot, len(sockets))
	names := make(map[int]string)

	for _, s := range sockets {
		pid := owners[s.Inode]

		name, ok := names[pid]
		if !ok {
			name, err = lookupProcessName(fs, pid)
			if err != nil {
				c.logger.Debug("process lookup failed", "port", s.Port, "pid", pid, "error", err)
				name = UnknownProcess
			}
			names[pid] = name
		}

		// A port bound on both tcp and tcp6 is one entry; prefer a resolved owner
		if existing, dup := snapshot[s.Port]; dup && existing.Name != UnknownProcess {
			continue
		}
		snapshot[s.Port] = Owner{Name: name, PID: pid}
	}

	return snapshot, nil
}
