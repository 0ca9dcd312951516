package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/FreightFlow/FreightFlow/internal/audit"
	"github.com/FreightFlow/FreightFlow/internal/config"
)

var securityJSON bool

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Inspect the security audit log",
}

var securityReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recent security events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}

		summary, err := audit.NewLog(cfg.Guard.AuditLogPath).Report()
		if err != nil {
			return fmt.Errorf("audit report: %w", err)
		}

		if securityJSON {
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		printHeader("🛡️ FreightFlow Security Report")
		fmt.Fprintf(cmd.OutOrStdout(), "Audit log:       %s\n", cfg.Guard.AuditLogPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Total events:    %d\n", summary.TotalEvents)
		fmt.Fprintf(cmd.OutOrStdout(), "Recent events:   %d\n", summary.RecentEvents)
		fmt.Fprintf(cmd.OutOrStdout(), "High severity:   %d\n", summary.HighSeverity)

		if len(summary.EventTypes) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "By type:")
			types := make([]string, 0, len(summary.EventTypes))
			for t := range summary.EventTypes {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %d\n", t, summary.EventTypes[t])
			}
		}
		return nil
	},
}

func init() {
	securityReportCmd.Flags().BoolVar(&securityJSON, "json", false, "emit the report as JSON")
	securityCmd.AddCommand(securityReportCmd)
}
