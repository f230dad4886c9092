package cli

import (
	"encoding/json"
	"fmt"

	"github.com/Alexander-50/Port-Stat/internal/config"
	"github.com/Alexander-50/Port-Stat/internal/health"
	"github.com/spf13/cobra"
)

var healthJSON bool

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output in JSON format")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that portstat can run on this host",
	Long: `Check that portstat can run on this host with the current configuration.

Verifies the socket tables are readable, reports listening ports whose owner
cannot be resolved, and checks the event log, journald and metrics settings.
Exits non-zero if any check failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := health.RunAll(cmd.Context(), cfg, config.ExpandPath(configPath))

		if healthJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			fmt.Fprint(cmd.OutOrStdout(), report.Format())
		}

		if report.Status == health.StatusFailed {
			return fmt.Errorf("health check failed")
		}
		return nil
	},
}
