package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from all available sources
// Hierarchy (lowest to highest precedence):
// 1. Built-in defaults
// 2. System config (/etc/portstat/config.toml)
// 3. User config (~/.config/portstat/config.toml)
// 4. Project config (./.portstat.toml)
// 5. $PORTSTAT_CONFIG
// 6. extraPath (the --config flag), which must exist if given
// 7. Environment variables (PORTSTAT_*)
func Load(extraPath string) (*Config, error) {
	cfg := GetDefaultConfig()

	for _, path := range GetConfigPaths() {
		if err := loadConfigFile(cfg, path); err != nil {
			// Only return error if file exists but can't be parsed
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	if extraPath != "" {
		path := ExpandPath(extraPath)
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile loads a TOML config file and merges it into cfg
func loadConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var fileCfg Config
	meta, err := toml.DecodeFile(path, &fileCfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}

	cfg.Merge(&fileCfg)

	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if env := os.Getenv("PORTSTAT_INTERVAL"); env != "" {
		v, err := strconv.Atoi(env)
		if err != nil {
			return fmt.Errorf("invalid PORTSTAT_INTERVAL %q: %w", env, err)
		}
		cfg.Monitor.IntervalSeconds = v
	}

	if env := os.Getenv("PORTSTAT_IGNORE_PORTS"); env != "" {
		cfg.Filter.IgnorePorts = ParsePortList(env)
	}

	if env := os.Getenv("PORTSTAT_IGNORE_PROCS"); env != "" {
		cfg.Filter.IgnoreProcs = ParseProcList(env)
	}

	if env := os.Getenv("PORTSTAT_JSON_LOG"); env != "" {
		cfg.Output.JSONLog = ExpandPath(env)
	}

	if env := os.Getenv("PORTSTAT_PROC_ROOT"); env != "" {
		cfg.Monitor.ProcRoot = ExpandPath(env)
	}

	if env := os.Getenv("PORTSTAT_METRICS_ADDR"); env != "" {
		cfg.Metrics.Addr = env
	}

	// NO_COLOR convention (https://no-color.org)
	if env := os.Getenv("NO_COLOR"); env != "" {
		cfg.Output.NoColor = ptrBool(true)
	}

	return nil
}

// Encode writes cfg as TOML
func Encode(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// WriteExample writes an example config file to the specified path
func WriteExample(path string) error {
	example := `# portstat configuration
# Files are read in order: /etc/portstat/config.toml, ~/.config/portstat/config.toml,
# ./.portstat.toml, $PORTSTAT_CONFIG, then --config. Later files win.

[monitor]
# Seconds between scans
interval = 5
# Upper bound for a single scan of the socket and process tables
scan_timeout = "10s"
# Read a different proc tree (e.g. the host's /proc mounted into a container)
proc_root = "/proc"

[filter]
# Never alert on these ports (they still enter the baseline)
ignore_ports = []
# Never alert on ports owned by these processes (case-insensitive)
ignore_procs = []

[output]
# Append one JSON object per alert to this file ("" disables)
json_log = ""
# Also send alerts to the systemd journal
journal = false
no_color = false

[metrics]
# Serve Prometheus metrics on this address, e.g. "127.0.0.1:9479" ("" disables)
addr = ""
`

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(example), 0o644)
}
