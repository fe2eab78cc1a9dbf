package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/config"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/source"
	"github.com/penwyp/go-eld-planner/internal/data/watcher"
	"github.com/penwyp/go-eld-planner/internal/export"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// Planner wires trip loading, timeline synthesis, analysis and export.
// It is safe for concurrent use.
type Planner struct {
	config     *config.Config
	dataLoader *DataLoader
	state      *StateManager
	refresh    *RefreshController
	now        func() time.Time

	exportOpts []export.Option
	mu         sync.Mutex
	exporters  map[int]*export.Exporter
}

// Option configures a Planner
type Option func(*Planner)

// WithClock overrides the clock used for seeds and export dates
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithExportOptions passes options to every per-trip exporter
func WithExportOptions(opts ...export.Option) Option {
	return func(p *Planner) { p.exportOpts = append(p.exportOpts, opts...) }
}

// New builds a planner over the source named in cfg
func New(cfg *config.Config, opts ...Option) (*Planner, error) {
	dataLoader, err := NewDataLoader(cfg)
	if err != nil {
		return nil, err
	}
	return newPlanner(cfg, dataLoader, opts...), nil
}

// NewWithSource builds a planner over an existing source
func NewWithSource(cfg *config.Config, src source.Source, opts ...Option) *Planner {
	return newPlanner(cfg, NewDataLoaderWithSource(cfg, src), opts...)
}

func newPlanner(cfg *config.Config, dataLoader *DataLoader, opts ...Option) *Planner {
	p := &Planner{
		config:     cfg,
		dataLoader: dataLoader,
		state:      NewStateManager(),
		now:        util.GetTimeProvider().Now,
		exporters:  make(map[int]*export.Exporter),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.refresh = NewRefreshController(dataLoader, p.state, p.now)
	return p
}

// Refresh reloads every trip
func (p *Planner) Refresh(ctx context.Context) (*Snapshot, error) {
	return p.refresh.Refresh(ctx)
}

// Snapshot returns the most recently loaded trips
func (p *Planner) Snapshot() *Snapshot {
	return p.state.Snapshot()
}

// Status reports loading state and the last refresh error
func (p *Planner) Status() (loading bool, message string, lastErr error) {
	loading, message = p.state.GetLoadingState()
	return loading, message, p.state.LastError()
}

// Trip returns a trip from the snapshot, falling back to the source for
// trips created since the last refresh.
func (p *Planner) Trip(ctx context.Context, id int) (*model.Trip, error) {
	if trip, ok := p.Snapshot().Trip(id); ok {
		return trip, nil
	}
	trip, err := p.dataLoader.Source().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// Timelines returns the synthesized days for a trip
func (p *Planner) Timelines(ctx context.Context, id int) ([]model.DailyTimeline, error) {
	snap := p.Snapshot()
	if tls, ok := snap.Timelines[id]; ok {
		return tls, nil
	}
	trip, err := p.Trip(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot([]*model.Trip{trip}, snap.Seed, snap.LoadedAt).Timelines[trip.ID], nil
}

// Analysis computes the overview numbers for a trip
func (p *Planner) Analysis(ctx context.Context, id int) (analyzer.TripAnalysis, error) {
	trip, err := p.Trip(ctx, id)
	if err != nil {
		return analyzer.TripAnalysis{}, err
	}
	return analyzer.AnalyzeTrip(trip), nil
}

// CycleOverview lays a trip onto the 8-day cycle window from the snapshot seed
func (p *Planner) CycleOverview(ctx context.Context, id int) ([]analyzer.CycleDay, error) {
	trip, err := p.Trip(ctx, id)
	if err != nil {
		return nil, err
	}
	return analyzer.CycleOverview(trip, p.seed()), nil
}

// Logs flattens the snapshot's daily logs through filter
func (p *Planner) Logs(filter analyzer.LogFilter) []analyzer.LogRow {
	return analyzer.LogRows(p.Snapshot().Trips, filter)
}

// Create plans a new trip and reloads so it shows up in listings
func (p *Planner) Create(ctx context.Context, req model.TripRequest) (*model.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	trip, err := p.dataLoader.Source().Create(ctx, req)
	if err != nil {
		return nil, err
	}
	util.LogInfof("Created trip %d: %s", trip.ID, trip.Route())

	if _, err := p.Refresh(ctx); err != nil {
		util.LogWarnf("Reload after creating trip %d failed: %v", trip.ID, err)
	}
	return trip, nil
}

// Export renders a trip's log sheet to PDF and hands it to saver. Exports
// of the same trip are serialized; a second request while one is running
// gets export.ErrExportInProgress.
func (p *Planner) Export(ctx context.Context, id int, saver export.Saver) (export.Result, error) {
	trip, err := p.Trip(ctx, id)
	if err != nil {
		return export.Result{}, err
	}

	sheet := export.NewLogSheet(trip, p.seed())
	meta := export.Meta{TripID: trip.ID, DriverName: trip.Driver()}
	return p.exporterFor(trip.ID).ExportTo(ctx, sheet, meta, saver)
}

// ExportBusy reports whether an export of the trip is running
func (p *Planner) ExportBusy(id int) bool {
	p.mu.Lock()
	e, ok := p.exporters[id]
	p.mu.Unlock()
	return ok && e.Busy()
}

func (p *Planner) exporterFor(id int) *export.Exporter {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.exporters[id]
	if !ok {
		opts := append([]export.Option{export.WithClock(p.now)}, p.exportOpts...)
		e = export.NewExporter(nil, opts...)
		p.exporters[id] = e
	}
	return e
}

// seed is the snapshot seed, or now before the first load
func (p *Planner) seed() time.Time {
	if seed := p.Snapshot().Seed; !seed.IsZero() {
		return seed
	}
	return p.now()
}

// Watch reloads whenever trip files change and calls onChange with each new
// snapshot. It blocks until ctx is done. Sources without directories (the
// API) have nothing to watch.
func (p *Planner) Watch(ctx context.Context, onChange func(*Snapshot)) error {
	dirs := p.dataLoader.WatchDirs()
	if len(dirs) == 0 {
		util.LogDebug("No trip directories to watch")
		<-ctx.Done()
		return nil
	}

	fw, err := watcher.NewFileWatcher(dirs)
	if err != nil {
		return fmt.Errorf("watch trip files: %w", err)
	}
	return p.watch(ctx, fw, onChange)
}

func (p *Planner) watch(ctx context.Context, monitor FileMonitor, onChange func(*Snapshot)) error {
	go monitor.Run(ctx)

	util.LogInfof("Watching trip files (debounce %v)", p.config.Debounce)
	watcher.Debounce(monitor.Events(), p.config.Debounce, func(events []watcher.FileEvent) {
		util.LogDebugf("%d trip file changes, reloading", len(events))
		snapshot, err := p.Refresh(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				util.LogErrorf("Reload failed: %v", err)
			}
			return
		}
		if onChange != nil {
			onChange(snapshot)
		}
	})
	return nil
}

// CacheStats reports cached trip counts in memory and on disk
func (p *Planner) CacheStats() (memory, disk int) {
	return p.dataLoader.CacheStats()
}

// ClearCache drops cached API trips
func (p *Planner) ClearCache() error {
	return p.dataLoader.ClearCache()
}

func (p *Planner) Close() error {
	return p.dataLoader.Close()
}
