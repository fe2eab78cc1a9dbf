package commands

import (
	"github.com/penwyp/go-eld-planner/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <trip-id>",
		Short: "Show route efficiency, cost estimate and HOS compliance of a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			p, err := a.loadPlanner(cmd.Context())
			if err != nil {
				return err
			}
			analysis, err := p.Analysis(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd, formatter.Report{Analysis: &analysis})
		},
	}
}
