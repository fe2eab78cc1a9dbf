package planner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/config"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/source"
	"github.com/penwyp/go-eld-planner/internal/data/watcher"
	"github.com/penwyp/go-eld-planner/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type memorySource struct {
	mu      sync.Mutex
	trips   []*model.Trip
	listErr error
	nextID  int
}

func (m *memorySource) List(context.Context) ([]*model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*model.Trip, len(m.trips))
	copy(out, m.trips)
	return out, nil
}

func (m *memorySource) Get(_ context.Context, id int) (*model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, trip := range m.trips {
		if trip.ID == id {
			return trip, nil
		}
	}
	return nil, source.ErrTripNotFound
}

func (m *memorySource) Create(_ context.Context, req model.TripRequest) (*model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	trip := &model.Trip{
		ID:               m.nextID,
		CurrentLocation:  req.CurrentLocation,
		PickupLocation:   req.PickupLocation,
		DropoffLocation:  req.DropoffLocation,
		CurrentCycleUsed: req.CurrentCycleUsed,
	}
	m.trips = append(m.trips, trip)
	return trip, nil
}

func trip(id int, dates ...string) *model.Trip {
	t := &model.Trip{
		ID:                id,
		CurrentLocation:   "Chicago, IL",
		PickupLocation:    "Gary, IN",
		DropoffLocation:   "Denver, CO",
		TotalDistance:     1600,
		EstimatedDuration: 19,
	}
	for i, date := range dates {
		t.DailyLogs = append(t.DailyLogs, model.DailyLogSummary{
			Date:            date,
			DrivingHours:    9.5,
			OnDutyHours:     2,
			OffDutyHours:    12.5,
			TotalCycleHours: float64(i+1) * 11.5,
		})
	}
	return t
}

func newTestPlanner(src source.Source) *Planner {
	cfg := &config.Config{Debounce: 10 * time.Millisecond}
	return NewWithSource(cfg, src,
		WithClock(func() time.Time { return testNow }),
		WithExportOptions(export.WithCompression(false)))
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	src := &memorySource{trips: []*model.Trip{
		trip(7, "2024-05-02", "2024-05-01"),
		trip(3, "2024-05-01"),
	}}
	p := newTestPlanner(src)

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Trips, 2)
	assert.Equal(t, 3, snap.Trips[0].ID)
	assert.Equal(t, 7, snap.Trips[1].ID)
	assert.Equal(t, testNow, snap.Seed)
	assert.Same(t, snap, p.Snapshot())

	tls := snap.Timelines[7]
	require.Len(t, tls, 2)
	assert.Equal(t, "2024-05-01", tls[0].Date)
	assert.Equal(t, "2024-05-02", tls[1].Date)

	loading, _, lastErr := p.Status()
	assert.False(t, loading)
	assert.NoError(t, lastErr)
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	src := &memorySource{trips: []*model.Trip{trip(1, "2024-05-01")}}
	p := newTestPlanner(src)

	first, err := p.Refresh(context.Background())
	require.NoError(t, err)

	src.listErr = errors.New("api down")
	_, err = p.Refresh(context.Background())
	require.ErrorContains(t, err, "api down")

	assert.Same(t, first, p.Snapshot())
	_, _, lastErr := p.Status()
	assert.ErrorContains(t, lastErr, "api down")
}

func TestTimelinesDeterministic(t *testing.T) {
	src := &memorySource{trips: []*model.Trip{trip(1, "2024-05-01", "2024-05-02")}}
	p := newTestPlanner(src)
	_, err := p.Refresh(context.Background())
	require.NoError(t, err)

	a, err := p.Timelines(context.Background(), 1)
	require.NoError(t, err)

	again, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, again.Timelines[1])
}

func TestTripFallsBackToSource(t *testing.T) {
	src := &memorySource{}
	p := newTestPlanner(src)
	_, err := p.Refresh(context.Background())
	require.NoError(t, err)

	src.trips = append(src.trips, trip(9, "2024-05-01"))

	got, err := p.Trip(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 9, got.ID)

	tls, err := p.Timelines(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, tls, 1)

	_, err = p.Trip(context.Background(), 10)
	assert.ErrorIs(t, err, source.ErrTripNotFound)
}

func TestLogsAndAnalysis(t *testing.T) {
	src := &memorySource{trips: []*model.Trip{
		trip(1, "2024-05-01", "2024-05-02"),
		trip(2, "2024-06-01"),
	}}
	p := newTestPlanner(src)
	_, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Len(t, p.Logs(analyzer.LogFilter{}), 3)
	assert.Len(t, p.Logs(analyzer.LogFilter{Date: "2024-05"}), 2)
	assert.Len(t, p.Logs(analyzer.LogFilter{TripID: 2}), 1)

	a, err := p.Analysis(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Days)
	assert.Equal(t, 19.0, a.TotalDrivingHours)

	cycle, err := p.CycleOverview(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cycle, 8)
	assert.Equal(t, "May 1", cycle[0].Label)
	assert.True(t, cycle[1].Active)
	assert.False(t, cycle[2].Active)
}

func TestCreate(t *testing.T) {
	src := &memorySource{}
	p := newTestPlanner(src)

	_, err := p.Create(context.Background(), model.TripRequest{CurrentLocation: "A"})
	assert.Error(t, err)
	assert.Empty(t, src.trips)

	created, err := p.Create(context.Background(), model.TripRequest{
		CurrentLocation:  "Chicago, IL",
		PickupLocation:   "Gary, IN",
		DropoffLocation:  "Denver, CO",
		CurrentCycleUsed: 12,
	})
	require.NoError(t, err)

	_, ok := p.Snapshot().Trip(created.ID)
	assert.True(t, ok, "created trip is loaded")
}

type blockingSaver struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSaver) Save(filename string, data []byte) (string, error) {
	close(b.entered)
	<-b.release
	return filename, nil
}

func TestExportPerTripGuard(t *testing.T) {
	src := &memorySource{trips: []*model.Trip{trip(1, "2024-05-01"), trip(2, "2024-05-01")}}
	p := newTestPlanner(src)
	_, err := p.Refresh(context.Background())
	require.NoError(t, err)

	slow := &blockingSaver{entered: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := p.Export(context.Background(), 1, slow)
		done <- err
	}()
	<-slow.entered
	assert.True(t, p.ExportBusy(1))

	_, err = p.Export(context.Background(), 1, export.SaverFunc(func(string, []byte) (string, error) {
		t.Error("second export must not save")
		return "", nil
	}))
	assert.ErrorIs(t, err, export.ErrExportInProgress)

	var saved string
	result, err := p.Export(context.Background(), 2, export.SaverFunc(func(name string, _ []byte) (string, error) {
		saved = name
		return name, nil
	}))
	require.NoError(t, err, "other trips are not blocked")
	assert.Equal(t, "eld-log-trip-2-2024-05-01.pdf", saved)
	assert.Equal(t, 1, result.Pages)

	close(slow.release)
	require.NoError(t, <-done)
	assert.False(t, p.ExportBusy(1))
}

func TestExportUnknownTrip(t *testing.T) {
	p := newTestPlanner(&memorySource{})
	_, err := p.Export(context.Background(), 4, export.DirSaver{Dir: t.TempDir()})
	assert.ErrorIs(t, err, source.ErrTripNotFound)
}

type fakeMonitor struct {
	events chan watcher.FileEvent
}

func (f *fakeMonitor) Run(ctx context.Context) {
	<-ctx.Done()
	close(f.events)
}

func (f *fakeMonitor) Events() <-chan watcher.FileEvent {
	return f.events
}

func TestWatchReloadsOnChange(t *testing.T) {
	src := &memorySource{trips: []*model.Trip{trip(1, "2024-05-01")}}
	p := newTestPlanner(src)

	monitor := &fakeMonitor{events: make(chan watcher.FileEvent, 4)}
	updates := make(chan *Snapshot, 4)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_ = p.watch(ctx, monitor, func(s *Snapshot) { updates <- s })
	}()

	monitor.events <- watcher.FileEvent{Path: "a.json", Operation: "WRITE"}
	monitor.events <- watcher.FileEvent{Path: "a.json", Operation: "WRITE"}

	select {
	case snap := <-updates:
		assert.Len(t, snap.Trips, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after file change")
	}

	cancel()
	<-finished
}

func TestNewWithFileSource(t *testing.T) {
	dir := t.TempDir()
	data := `[{"id": 4, "current_location": "Reno, NV", "dropoff_location": "Boise, ID",
	  "daily_logs": [{"date": "2024-05-01", "driving_hours": 6, "total_cycle_hours": 20}]}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trips.json"), []byte(data), 0644))

	cfg := &config.Config{Source: config.SourceFile, Data: []string{dir}}
	require.NoError(t, cfg.Validate())

	p, err := New(cfg, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	defer p.Close()

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Trips, 1)
	assert.Equal(t, "Reno, NV → Boise, ID", snap.Trips[0].Route())
	assert.NotEmpty(t, p.dataLoader.WatchDirs())
}

func TestNewWithAPISourceCachesTrips(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/trips/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "current_location": "Reno, NV", "dropoff_location": "Boise, ID"},
			{"id": 2, "current_location": "Austin, TX", "dropoff_location": "Dallas, TX"}]`))
	}))
	defer api.Close()

	cacheDir := t.TempDir()
	cfg := &config.Config{Source: config.SourceAPI, APIURL: api.URL, CacheDir: cacheDir}
	require.NoError(t, cfg.Validate())

	p, err := New(cfg, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Trips, 2)

	memory, disk := p.CacheStats()
	assert.Equal(t, 2, memory)
	assert.Equal(t, 2, disk)
	require.NoError(t, p.Close())

	offline := &config.Config{Source: config.SourceAPI, APIURL: "http://127.0.0.1:1", CacheDir: cacheDir, Offline: true}
	require.NoError(t, offline.Validate())

	p, err = New(offline, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	defer p.Close()

	snap, err = p.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Trips, 2)
	assert.Equal(t, "Austin, TX → Dallas, TX", snap.Trips[1].Route())

	require.NoError(t, p.ClearCache())
	_, disk = p.CacheStats()
	assert.Zero(t, disk)
}
