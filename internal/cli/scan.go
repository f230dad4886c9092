package cli

import (
	"fmt"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/config"
	"github.com/Alexander-50/Port-Stat/internal/monitor"
	"github.com/spf13/cobra"
)

var scanJSON bool

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output in JSON format")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the ports currently listening on this host",
	Long: `List the ports currently listening on this host with their owning process.

This is the same snapshot the monitor uses as its baseline. Ports whose owner
cannot be inspected (usually because of missing privileges) are shown as "Unknown".

Examples:
  portstat scan            # Table output
  portstat scan --json     # JSON output`,
	Args: cobra.NoArgs,
	RunE: scanCommand,
}

func scanCommand(cmd *cobra.Command, args []string) error {
	collector := monitor.NewCollector(cfg.Monitor.ProcRoot, cfg.Monitor.ScanTimeout.Duration)

	snapshot, err := collector.Collect(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to enumerate listening ports: %w", err)
	}

	if scanJSON {
		out, err := monitor.FormatSnapshotJSON(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	format := monitor.NewFormatter(cmd.OutOrStdout(), config.Enabled(cfg.Output.NoColor))
	fmt.Fprint(cmd.OutOrStdout(), format.FormatSnapshot(snapshot, time.Now()))
	return nil
}
