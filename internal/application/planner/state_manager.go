package planner

import (
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/core/timeline"
)

// Snapshot is an immutable view of every loaded trip with its synthesized
// timelines. Reloads replace the whole snapshot.
type Snapshot struct {
	Trips     []*model.Trip
	Timelines map[int][]model.DailyTimeline
	Seed      time.Time
	LoadedAt  time.Time
}

// BuildSnapshot sorts trips by id and synthesizes each trip's days from seed
func BuildSnapshot(trips []*model.Trip, seed, loadedAt time.Time) *Snapshot {
	sorted := make([]*model.Trip, 0, len(trips))
	for _, trip := range trips {
		if trip != nil {
			sorted = append(sorted, trip)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	timelines := make(map[int][]model.DailyTimeline, len(sorted))
	for _, trip := range sorted {
		timelines[trip.ID] = timeline.SynthesizeTrip(trip, seed)
	}

	return &Snapshot{
		Trips:     sorted,
		Timelines: timelines,
		Seed:      seed,
		LoadedAt:  loadedAt,
	}
}

// Trip finds a trip by id
func (s *Snapshot) Trip(id int) (*model.Trip, bool) {
	i := sort.Search(len(s.Trips), func(i int) bool { return s.Trips[i].ID >= id })
	if i < len(s.Trips) && s.Trips[i].ID == id {
		return s.Trips[i], true
	}
	return nil, false
}

// StateManager holds the current snapshot and loading state
type StateManager struct {
	mu sync.RWMutex

	snapshot *Snapshot

	isLoading      bool
	loadingMessage string
	lastError      error
}

func NewStateManager() *StateManager {
	return &StateManager{
		snapshot: &Snapshot{Timelines: map[int][]model.DailyTimeline{}},
	}
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (sm *StateManager) Snapshot() *Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.snapshot
}

// SetSnapshot swaps in a new snapshot and clears any load error
func (sm *StateManager) SetSnapshot(s *Snapshot) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.snapshot = s
	sm.lastError = nil
}

func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isLoading, sm.loadingMessage
}

func (sm *StateManager) SetLoadingState(isLoading bool, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isLoading = isLoading
	sm.loadingMessage = message
}

// LastError is the error from the most recent failed refresh, if any
func (sm *StateManager) LastError() error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastError
}

func (sm *StateManager) SetError(err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.lastError = err
}
