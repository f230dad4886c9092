package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/config"
	"github.com/Alexander-50/Port-Stat/internal/monitor"
	"github.com/Alexander-50/Port-Stat/internal/telemetry"
	"github.com/spf13/cobra"
)

// Version is the current version of portstat (injected via ldflags at build time)
var Version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool

	// Monitor flags
	interval    int
	ignorePorts string
	ignoreProcs string
	jsonLog     string
	useJournal  bool
	metricsAddr string
	noColor     bool
	once        bool
	scanTimeout time.Duration

	// Loaded config
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "portstat",
	Short: "Alert when new listening ports appear on this host",
	Long: `portstat periodically inspects the host's listening TCP ports and alerts
when a port appears that was not listening during the previous scan.

Known ports and processes can be excluded from alerting; they still become
part of the baseline. Alerts can be appended to a JSON Lines event log.

Examples:
  portstat                                   # Scan every 5 seconds
  portstat --interval 10 --ignore-ports 22,53
  portstat --ignore-procs sshd,chronyd --json-log /var/log/portstat.jsonl
  portstat scan                              # List current listening ports
  portstat events /var/log/portstat.jsonl    # Show recorded alerts
  portstat health                            # Check privileges and sinks
`,
	Version:      Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runMonitor,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		applyFlagOverrides(cmd, cfg)

		return cfg.Validate()
	},
}

// Execute runs the root command; cancelling ctx stops the monitor gracefully
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Additional config file (highest file precedence)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Sink flags are shared with health and events
	rootCmd.PersistentFlags().StringVar(&jsonLog, "json-log", "", "Enable JSON logging to a file")
	rootCmd.PersistentFlags().BoolVar(&useJournal, "journal", false, "Also send alerts to the systemd journal")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	rootCmd.Flags().IntVar(&interval, "interval", 5, "Scan interval (seconds)")
	rootCmd.Flags().StringVar(&ignorePorts, "ignore-ports", "", "Comma-separated ports to ignore")
	rootCmd.Flags().StringVar(&ignoreProcs, "ignore-procs", "", "Comma-separated process names to ignore")
	rootCmd.Flags().BoolVar(&once, "once", false, "Run a single scan cycle after the baseline, then exit")
	rootCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", 10*time.Second, "Deadline for a single scan")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "portstat v%s\n", Version)
	},
}

// applyFlagOverrides applies CLI flags on top of the loaded config.
// Only flags that were explicitly set take precedence.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("interval") {
		c.Monitor.IntervalSeconds = interval
	}
	if flags.Changed("scan-timeout") {
		c.Monitor.ScanTimeout.Duration = scanTimeout
	}
	if flags.Changed("ignore-ports") {
		c.Filter.IgnorePorts = config.ParsePortList(ignorePorts)
	}
	if flags.Changed("ignore-procs") {
		c.Filter.IgnoreProcs = config.ParseProcList(ignoreProcs)
	}
	if flags.Changed("json-log") {
		c.Output.JSONLog = config.ExpandPath(jsonLog)
	}
	if flags.Changed("journal") {
		c.Output.Journal = &useJournal
	}
	if flags.Changed("no-color") {
		c.Output.NoColor = &noColor
	}
	if flags.Changed("metrics-addr") {
		c.Metrics.Addr = metricsAddr
	}
}

// daemonConfig translates the merged configuration for the monitor
func daemonConfig(c *config.Config, cmd *cobra.Command) monitor.DaemonConfig {
	return monitor.DaemonConfig{
		PollInterval: c.Interval(),
		ScanTimeout:  c.Monitor.ScanTimeout.Duration,
		ProcRoot:     c.Monitor.ProcRoot,
		Filter:       monitor.NewFilter(c.Filter.IgnorePorts, c.Filter.IgnoreProcs),
		EventLogPath: c.Output.JSONLog,
		Journal:      config.Enabled(c.Output.Journal),
		NoColor:      config.Enabled(c.Output.NoColor),
		Once:         once,
		Out:          cmd.OutOrStdout(),
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.Metrics.Addr != "" {
		srv, err := telemetry.Listen(cfg.Metrics.Addr)
		if err != nil {
			return err
		}
		slog.Info("serving metrics", "component", "telemetry", "addr", srv.Addr())
		go srv.Serve(ctx)
	}
	telemetry.InitMetrics()

	d := monitor.NewDaemon(daemonConfig(cfg, cmd), nil)
	return d.Run(ctx)
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
