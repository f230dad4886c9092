package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/config"
	"github.com/Alexander-50/Port-Stat/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	eventsPort  int
	eventsSince time.Duration
	eventsJSON  bool
)

func init() {
	eventsCmd.Flags().IntVar(&eventsPort, "port", 0, "Only show events for this port")
	eventsCmd.Flags().DurationVar(&eventsSince, "since", 0, "Only show events newer than this (e.g. 1h)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output events as JSON lines")
}

var eventsCmd = &cobra.Command{
	Use:   "events [log-file]",
	Short: "Show alerts recorded in a JSON event log",
	Long: `Show alerts recorded in a JSON event log.

If no file is given, the json_log path from the configuration is used.
Lines that are not valid events are skipped.

Examples:
  portstat events /var/log/portstat.jsonl
  portstat events --port 8080
  portstat events --since 24h --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: eventsCommand,
}

func eventsCommand(cmd *cobra.Command, args []string) error {
	path := cfg.Output.JSONLog
	if len(args) > 0 {
		path = config.ExpandPath(args[0])
	}
	if path == "" {
		return fmt.Errorf("no event log given and json_log is not configured")
	}

	events, err := monitor.ReadEventLog(path)
	if err != nil {
		return err
	}

	var cutoff time.Time
	if eventsSince > 0 {
		cutoff = time.Now().Add(-eventsSince)
	}

	out := cmd.OutOrStdout()
	format := monitor.NewFormatter(out, config.Enabled(cfg.Output.NoColor))
	shown := 0

	for _, event := range events {
		if eventsPort != 0 && event.Port != eventsPort {
			continue
		}
		if !cutoff.IsZero() && event.Timestamp.Before(cutoff) {
			continue
		}

		if eventsJSON {
			data, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			if shown == 0 {
				fmt.Fprintln(out, "Time                     Port    PID      Process")
			}
			fmt.Fprintln(out, format.FormatEvent(event))
		}
		shown++
	}

	if shown == 0 && !eventsJSON {
		fmt.Fprintln(out, "No matching events")
	}

	return nil
}
