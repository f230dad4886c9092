package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents the complete configuration
type Config struct {
	Monitor MonitorConfig `toml:"monitor"`
	Filter  FilterConfig  `toml:"filter"`
	Output  OutputConfig  `toml:"output"`
	Metrics MetricsConfig `toml:"metrics"`
}

// MonitorConfig controls scanning
type MonitorConfig struct {
	IntervalSeconds int      `toml:"interval"`
	ScanTimeout     Duration `toml:"scan_timeout"`
	ProcRoot        string   `toml:"proc_root"` // Alternate /proc, e.g. a host mount inside a container
}

// FilterConfig lists ports and processes excluded from alerting
type FilterConfig struct {
	IgnorePorts []int    `toml:"ignore_ports"`
	IgnoreProcs []string `toml:"ignore_procs"`
}

// OutputConfig contains alert sinks
type OutputConfig struct {
	JSONLog string `toml:"json_log"` // Empty disables the event log
	Journal *bool  `toml:"journal"`  // Also send alerts to journald
	NoColor *bool  `toml:"no_color"`
}

// MetricsConfig contains the Prometheus endpoint settings
type MetricsConfig struct {
	Addr string `toml:"addr"` // host:port, empty disables
}

// Duration decodes TOML strings such as "10s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Interval returns the poll interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// Validate checks values that would make the monitor misbehave
func (c *Config) Validate() error {
	if c.Monitor.IntervalSeconds < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", c.Monitor.IntervalSeconds)
	}
	if c.Monitor.ScanTimeout.Duration < 0 {
		return fmt.Errorf("scan_timeout must not be negative")
	}
	for _, p := range c.Filter.IgnorePorts {
		if p < 1 || p > 65535 {
			return fmt.Errorf("ignored port %d out of range 1-65535", p)
		}
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			IntervalSeconds: 5,
			ScanTimeout:     Duration{10 * time.Second},
			ProcRoot:        "/proc",
		},
		Filter: FilterConfig{
			IgnorePorts: []int{},
			IgnoreProcs: []string{},
		},
		Output: OutputConfig{
			JSONLog: "",
			Journal: ptrBool(false),
			NoColor: ptrBool(false),
		},
	}
}

// GetConfigPaths returns the list of config file paths to check (in order)
// If PORTSTAT_CONFIG environment variable is set, it is added as highest priority
func GetConfigPaths() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	paths := []string{
		"/etc/portstat/config.toml",
		filepath.Join(homeDir, ".config/portstat/config.toml"),
		filepath.Join(workDir, ".portstat.toml"),
	}

	if envConfig := os.Getenv("PORTSTAT_CONFIG"); envConfig != "" {
		paths = append(paths, ExpandPath(envConfig))
	}

	return paths
}

// ExpandPath expands ~ in paths to home directory
func ExpandPath(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if len(path) == 1 {
			return homeDir
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Merge merges another config into this one (other takes precedence)
func (c *Config) Merge(other *Config) {
	if other.Monitor.IntervalSeconds != 0 {
		c.Monitor.IntervalSeconds = other.Monitor.IntervalSeconds
	}
	if other.Monitor.ScanTimeout.Duration != 0 {
		c.Monitor.ScanTimeout = other.Monitor.ScanTimeout
	}
	if other.Monitor.ProcRoot != "" {
		c.Monitor.ProcRoot = ExpandPath(other.Monitor.ProcRoot)
	}

	// Ignore lists replace entirely if set
	if len(other.Filter.IgnorePorts) > 0 {
		c.Filter.IgnorePorts = other.Filter.IgnorePorts
	}
	if len(other.Filter.IgnoreProcs) > 0 {
		c.Filter.IgnoreProcs = other.Filter.IgnoreProcs
	}

	if other.Output.JSONLog != "" {
		c.Output.JSONLog = ExpandPath(other.Output.JSONLog)
	}
	// nil means "not set in this file"
	if other.Output.Journal != nil {
		c.Output.Journal = other.Output.Journal
	}
	if other.Output.NoColor != nil {
		c.Output.NoColor = other.Output.NoColor
	}

	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}

// ParsePortList parses a comma-separated port list. Entries that are not
// plain integers in 1-65535 are skipped; no listener can match them.
func ParsePortList(s string) []int {
	ports := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil || p < 1 || p > 65535 {
			continue
		}
		ports = append(ports, p)
	}
	return ports
}

// ParseProcList parses a comma-separated list of process names, lowercased
func ParseProcList(s string) []string {
	procs := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			procs = append(procs, part)
		}
	}
	return procs
}

// Enabled dereferences a tri-state boolean, treating nil as false
func Enabled(b *bool) bool {
	return b != nil && *b
}

func ptrBool(b bool) *bool {
	return &b
}
