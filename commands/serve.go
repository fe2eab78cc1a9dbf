package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-eld-planner/internal/server"
	"github.com/penwyp/go-eld-planner/internal/util"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Long: `Serve the trip dashboard and its JSON API. With the file source, edits to
trip files are picked up and pushed to open dashboards over a websocket.

Examples:
  go-eld-planner serve                                  # Listen on :8080
  go-eld-planner serve --listen 127.0.0.1:9000          # Custom address
  go-eld-planner serve --source file --data ./trips     # Live-reload local trips`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := a.loadPlanner(ctx)
			if err != nil {
				return err
			}

			srv := server.New(p, server.NewHub(), a.config.Listen)
			go func() {
				if err := p.Watch(ctx, srv.Notify); err != nil {
					util.LogErrorf("Trip watcher stopped: %v", err)
				}
			}()

			cmd.Printf("Dashboard listening on %s\n", a.config.Listen)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("listen", "", "listen address (default :8080)")
	cobra.CheckErr(a.viper.BindPFlag("listen", cmd.Flags().Lookup("listen")))
	return cmd
}
