package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-eld-planner/internal/application/planner"
	"github.com/penwyp/go-eld-planner/internal/config"
	"github.com/penwyp/go-eld-planner/internal/presentation/formatter"
	"github.com/penwyp/go-eld-planner/internal/presentation/interaction"
	"github.com/penwyp/go-eld-planner/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by every subcommand of one invocation
type app struct {
	viper   *viper.Viper
	cfgFile string
	reset   bool
	sortBy  string
	desc    bool

	config  *config.Config
	planner *planner.Planner
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	a := &app{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "go-eld-planner [flags]",
		Short: "ELD trip planning and daily log tool",
		Long: `go-eld-planner loads planned trips from the trip API or local JSON files,
synthesizes FMCSA-style daily duty logs, checks them against the 11-hour
driving and 70-hour/8-day limits, and exports paginated PDF log sheets.

Examples:
  go-eld-planner                                  # List trips from the API
  go-eld-planner --source file --data ./trips     # List trips from local JSON files
  go-eld-planner --sort distance --desc           # Longest trips first
  go-eld-planner logs --date 2024-05 -o summary   # Compliance summary for May
  go-eld-planner timeline 12                      # Synthesized daily logs for trip 12
  go-eld-planner export 12 --dir ./out            # Write trip 12's log sheet as PDF
  go-eld-planner serve --listen :8080             # Run the web dashboard`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		RunE:              a.runTrips,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: $HOME/.go-eld-planner.yaml)")
	flags.String("source", config.SourceAPI, "trip source (api, file)")
	flags.String("api", config.DefaultAPIURL, "trip API base URL")
	flags.StringSlice("data", []string{config.DefaultDataGlob}, "trip JSON files, directories or glob patterns (file source)")
	flags.String("cache-dir", config.DefaultCacheDir, "trip cache directory (api source)")
	flags.Bool("offline", false, "serve trips from the cache without contacting the API")
	flags.String("timezone", "Local", "timezone for dates and timelines (e.g., America/Chicago, UTC)")
	flags.Bool("debug", false, "enable debug logging to stderr")
	flags.StringP("output", "o", "table", "output format (table, json, csv, summary)")

	for key, flag := range map[string]string{
		"source":    "source",
		"api_url":   "api",
		"data":      "data",
		"cache_dir": "cache-dir",
		"offline":   "offline",
		"timezone":  "timezone",
		"debug":     "debug",
		"output":    "output",
	} {
		cobra.CheckErr(a.viper.BindPFlag(key, flags.Lookup(flag)))
	}

	cmd.Flags().BoolVarP(&a.reset, "reset", "r", false, "clear the trip cache before loading")
	cmd.Flags().StringVarP(&a.sortBy, "sort", "s", "id", "sort trips by (id, distance, duration, cycle, date)")
	cmd.Flags().BoolVar(&a.desc, "desc", false, "sort in descending order")

	cmd.AddCommand(
		newLogsCmd(a),
		newTimelineCmd(a),
		newAnalyzeCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newCreateCmd(a),
	)
	return cmd
}

func Execute() error {
	return rootCmd.Execute()
}

// setup resolves configuration and initializes logging and the clock
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	a.config = cfg

	cfg.LogFile = expandPath(cfg.LogFile)
	if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(cfg.LogLevel(), cfg.LogFile, cfg.Debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	util.LogDebug("Configuration loaded",
		util.F("command", cmd.Name()),
		util.F("source", cfg.Source),
		util.F("offline", cfg.Offline),
		util.F("output", cfg.Output))
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	if a.planner != nil {
		if err := a.planner.Close(); err != nil {
			util.LogWarnf("Close planner: %v", err)
		}
		a.planner = nil
	}
	if l := util.GetLogger(); l != nil {
		_ = l.Close()
		util.SetLogger(nil)
	}
}

// loadPlanner builds the planner once and loads every trip
func (a *app) loadPlanner(ctx context.Context) (*planner.Planner, error) {
	if a.planner == nil {
		p, err := planner.New(a.config)
		if err != nil {
			return nil, err
		}
		a.planner = p
	}
	if _, err := a.planner.Refresh(ctx); err != nil {
		return nil, err
	}
	return a.planner, nil
}

// render writes report to the command's output in the configured format
func (a *app) render(cmd *cobra.Command, report formatter.Report) error {
	out := cmd.OutOrStdout()
	f, err := formatter.New(a.config.Output, formatter.WithMaxWidth(terminalWidth(out)))
	if err != nil {
		return err
	}
	return f.Format(out, report)
}

func (a *app) runTrips(cmd *cobra.Command, args []string) error {
	field, err := interaction.ParseSortField(a.sortBy)
	if err != nil {
		return err
	}
	order := interaction.SortAscending
	if a.desc {
		order = interaction.SortDescending
	}

	if a.reset {
		p, err := planner.New(a.config)
		if err != nil {
			return err
		}
		a.planner = p
		if err := p.ClearCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		util.LogInfo("Cache cleared")
	}

	p, err := a.loadPlanner(cmd.Context())
	if err != nil {
		return err
	}
	memory, disk := p.CacheStats()
	util.LogDebug("Trips loaded",
		util.F("trips", len(p.Snapshot().Trips)),
		util.F("cached_memory", memory),
		util.F("cached_disk", disk))

	trips := interaction.NewTripSorter(field, order).Sort(p.Snapshot().Trips)
	return a.render(cmd, formatter.Report{Trips: trips})
}

// Helper functions

func expandPath(path string) string {
	path = config.ExpandPath(path)
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func parseTripID(arg string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(strings.TrimSpace(arg), "%d", &id); err != nil || id < 0 {
		return 0, fmt.Errorf("invalid trip id %q", arg)
	}
	return id, nil
}
