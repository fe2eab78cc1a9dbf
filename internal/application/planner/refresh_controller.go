package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-eld-planner/internal/util"
)

// RefreshController reloads trips and rebuilds the snapshot
type RefreshController struct {
	dataLoader *DataLoader
	state      *StateManager
	now        func() time.Time

	refreshMutex sync.Mutex // Prevent concurrent refreshes
}

// NewRefreshController creates a controller; now supplies both the
// synthesis seed and the load timestamp.
func NewRefreshController(dataLoader *DataLoader, state *StateManager, now func() time.Time) *RefreshController {
	return &RefreshController{
		dataLoader: dataLoader,
		state:      state,
		now:        now,
	}
}

// Refresh loads every trip and swaps in a new snapshot. On failure the
// previous snapshot stays in place.
func (rc *RefreshController) Refresh(ctx context.Context) (*Snapshot, error) {
	rc.refreshMutex.Lock()
	defer rc.refreshMutex.Unlock()

	rc.state.SetLoadingState(true, "Loading trips...")
	defer rc.state.SetLoadingState(false, "")

	start := time.Now()
	trips, err := rc.dataLoader.Load(ctx)
	if err != nil {
		rc.state.SetError(err)
		return nil, err
	}

	now := rc.now()
	snapshot := BuildSnapshot(trips, now, now)
	rc.state.SetSnapshot(snapshot)

	rc.logSnapshotDetails(snapshot, time.Since(start))
	return snapshot, nil
}

func (rc *RefreshController) logSnapshotDetails(s *Snapshot, took time.Duration) {
	days := 0
	for _, trip := range s.Trips {
		days += len(trip.DailyLogs)
		util.LogDebug(fmt.Sprintf("Trip %d: %s, %d days", trip.ID, trip.Route(), len(trip.DailyLogs)),
			util.F("trip_id", trip.ID))
	}
	util.LogInfo("Loaded trips",
		util.F("trips", len(s.Trips)),
		util.F("days", days),
		util.F("took", took.String()))
}
