package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"traceview/internal/metrics"
	"traceview/internal/session"
	"traceview/internal/storage"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [dataset...]",
	Short: "Print idle percentages and the average busy estimate",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry := storage.NewRegistry(cfg)
		sess := session.New(cfg, registry)

		names := args
		if len(names) == 0 {
			names = registry.Names()
		}
		failed := 0
		for _, name := range names {
			summary, err := sess.Summary(cmd.Context(), name)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, color.RedString(err.Error()))
				continue
			}
			printSummary(cmd.OutOrStdout(), name, summary, cfg.IdleWarningPercent)
		}
		if failed > 0 {
			return fmt.Errorf("%d dataset(s) could not be summarised", failed)
		}
		return nil
	},
}

func printSummary(w io.Writer, name string, s metrics.Summary, warnAbove float64) {
	fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint(name))
	fmt.Fprintf(w, "  span %.0f  tasks %d  workers %d  ABE %d\n", s.Span, s.Records, s.Resources, s.ABE)
	for _, idle := range s.Idle {
		value := fmt.Sprintf("%6.2f%%", idle.IdlePercent)
		if idle.IdlePercent > warnAbove {
			value = color.YellowString(value)
		} else {
			value = color.GreenString(value)
		}
		fmt.Fprintf(w, "  %-12s idle %s\n", idle.ResourceID, value)
	}
}
