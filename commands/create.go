package commands

import (
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var req model.TripRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Plan a new trip through the trip API",
		Long: `Submit a trip request to the trip API, which plans the route, rest stops
and daily logs.

Example:
  go-eld-planner create --current "Chicago, IL" --pickup "Joliet, IL" --dropoff "Denver, CO" --cycle 12.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			p, err := a.loadPlanner(cmd.Context())
			if err != nil {
				return err
			}
			trip, err := p.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.render(cmd, formatter.Report{Trips: []*model.Trip{trip}})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.CurrentLocation, "current", "", "current location")
	flags.StringVar(&req.PickupLocation, "pickup", "", "pickup location")
	flags.StringVar(&req.DropoffLocation, "dropoff", "", "dropoff location")
	flags.Float64Var(&req.CurrentCycleUsed, "cycle", 0, "hours already used in the 70-hour cycle")
	return cmd
}
