package commands

import (
	"fmt"

	"github.com/penwyp/go-eld-planner/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

func newTimelineCmd(a *app) *cobra.Command {
	var day int

	cmd := &cobra.Command{
		Use:   "timeline <trip-id>",
		Short: "Show the synthesized duty-status timeline of a trip",
		Long: `Show the duty-status events synthesized for each day of a trip:
pre-trip inspection, driving, mandatory break, pickup and dropoff, and
end-of-day off duty.

Examples:
  go-eld-planner timeline 12                # Every day of trip 12
  go-eld-planner timeline 12 --day 2        # Only the second day`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			p, err := a.loadPlanner(cmd.Context())
			if err != nil {
				return err
			}
			days, err := p.Timelines(cmd.Context(), id)
			if err != nil {
				return err
			}
			if day != 0 {
				if day < 1 || day > len(days) {
					return fmt.Errorf("trip %d has %d days, no day %d", id, len(days), day)
				}
				days = days[day-1 : day]
			}
			return a.render(cmd, formatter.Report{Timelines: days})
		},
	}

	cmd.Flags().IntVar(&day, "day", 0, "only this day, counting from 1")
	return cmd
}
