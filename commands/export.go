package commands

import (
	"fmt"

	"github.com/penwyp/go-eld-planner/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <trip-id>",
		Short: "Export a trip's daily log sheet as a paginated A4 PDF",
		Long: `Render a trip's daily log sheet and write it as a paginated A4 PDF named
eld-log-trip-<id>-<date>.pdf.

Examples:
  go-eld-planner export 12                  # Write to the configured export dir
  go-eld-planner export 12 --dir ./out      # Write into ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTripID(args[0])
			if err != nil {
				return err
			}
			if dir == "" {
				dir = a.config.ExportDir
			}
			p, err := a.loadPlanner(cmd.Context())
			if err != nil {
				return err
			}

			result, err := p.Export(cmd.Context(), id, export.DirSaver{Dir: expandPath(dir)})
			if err != nil {
				return fmt.Errorf("failed to export trip %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d pages)\n", result.Location, result.Pages)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: export_dir from config)")
	return cmd
}
