package monitor

import (
	"io"
	"sort"
	"strings"
	"time"
)

// UnknownProcess is recorded when the owner of a listening socket cannot be inspected
const UnknownProcess = "Unknown"

// EventTypeNewPort is the type discriminator written for every alert event
const EventTypeNewPort = "new_port"

// Owner identifies the process holding a listening socket
type Owner struct {
	Name string `json:"process"`
	PID  int    `json:"pid"`
}

// Snapshot maps listening port numbers to their owning process.
// A snapshot is captured once per cycle and never modified afterwards.
type Snapshot map[int]Owner

// Ports returns the snapshot's ports in ascending order
func (s Snapshot) Ports() []int {
	ports := make([]int, 0, len(s))
	for port := range s {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

// Finding is a newly observed listening port that passed the filters
type Finding struct {
	Port       int
	Process    string
	PID        int
	DetectedAt time.Time
}

// AlertEvent is the persisted form of a Finding (one JSON object per line)
type AlertEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Port      int       `json:"port"`
	Process   string    `json:"process"`
	PID       int       `json:"pid"`
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
}

// Filter excludes known ports and processes from alerting.
// It never affects which ports enter the baseline.
type Filter struct {
	ports map[int]struct{}
	procs map[string]struct{}
}

// NewFilter builds a filter; process names are matched case-insensitively
func NewFilter(ports []int, procs []string) Filter {
	f := Filter{
		ports: make(map[int]struct{}, len(ports)),
		procs: make(map[string]struct{}, len(procs)),
	}
	for _, p := range ports {
		f.ports[p] = struct{}{}
	}
	for _, name := range procs {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			f.procs[name] = struct{}{}
		}
	}
	return f
}

// Excludes reports whether a port owned by the named process should not be alerted on
func (f Filter) Excludes(port int, process string) bool {
	if _, ok := f.ports[port]; ok {
		return true
	}
	_, ok := f.procs[strings.ToLower(process)]
	return ok
}

// DaemonConfig configures the monitoring loop
type DaemonConfig struct {
	PollInterval time.Duration
	ScanTimeout  time.Duration
	ProcRoot     string
	Filter       Filter

	// EventLogPath enables the JSON-lines event log when non-empty
	EventLogPath string
	Journal      bool
	NoColor      bool

	// Once stops the loop after the first diff cycle
	Once bool

	Out io.Writer
}
