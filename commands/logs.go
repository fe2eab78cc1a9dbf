package commands

import (
	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

func newLogsCmd(a *app) *cobra.Command {
	var filter analyzer.LogFilter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List daily log summaries with compliance status",
		Long: `List the daily log summaries of every trip, sorted by date.

Examples:
  go-eld-planner logs                       # All logs
  go-eld-planner logs --trip 12             # Logs of trip 12
  go-eld-planner logs --date 2024-05        # Logs in May 2024
  go-eld-planner logs -o summary            # Compliance totals per trip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPlanner(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd, formatter.Report{Logs: p.Logs(filter)})
		},
	}

	cmd.Flags().IntVar(&filter.TripID, "trip", 0, "only logs of this trip id (0 for all)")
	cmd.Flags().StringVar(&filter.Date, "date", "", "only logs whose date contains this text (e.g., 2024-05)")
	return cmd
}
