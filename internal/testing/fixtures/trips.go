package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// TripGenerator writes trip JSON files in the API's format
type TripGenerator struct {
	baseDir string
}

// NewTripGenerator creates a generator rooted at baseDir
func NewTripGenerator(baseDir string) *TripGenerator {
	return &TripGenerator{baseDir: baseDir}
}

// Dir is the generator's root
func (g *TripGenerator) Dir() string {
	return g.baseDir
}

// CompliantTrip plans days of 9.5h driving from start, starting the cycle at
// cycleUsed hours.
func CompliantTrip(id int, start time.Time, days int, cycleUsed float64) *model.Trip {
	trip := &model.Trip{
		ID:                id,
		CurrentLocation:   "Chicago, IL",
		PickupLocation:    "Gary, IN",
		DropoffLocation:   "Denver, CO",
		CurrentCycleUsed:  cycleUsed,
		TotalDistance:     float64(days) * 850,
		EstimatedDuration: float64(days) * 9.5,
		CreatedAt:         start.Format(time.RFC3339),
		Legs: []model.RouteLeg{
			{Sequence: 1, StartLocation: "Chicago, IL", EndLocation: "Gary, IN", Distance: 45, Duration: 0.8, Instructions: "Head east on I-90"},
			{Sequence: 2, StartLocation: "Gary, IN", EndLocation: "Denver, CO", Distance: float64(days)*850 - 45, Duration: float64(days)*9.5 - 0.8, Instructions: "Continue west on I-80"},
		},
	}

	cycle := cycleUsed
	for i := 0; i < days; i++ {
		cycle += 11.5
		trip.DailyLogs = append(trip.DailyLogs, model.DailyLogSummary{
			Date:            start.AddDate(0, 0, i).Format("2006-01-02"),
			DrivingHours:    9.5,
			OnDutyHours:     2,
			OffDutyHours:    12.5,
			TotalCycleHours: cycle,
		})
		if i > 0 {
			trip.RestStops = append(trip.RestStops, model.RestStop{
				Sequence:      i,
				Location:      fmt.Sprintf("Rest Area %d", i),
				DurationHours: 10,
				Reason:        "10-hour rest",
			})
		}
	}
	return trip
}

// ViolatingTrip is a single day over both the 11h driving and 70h cycle limits
func ViolatingTrip(id int, start time.Time) *model.Trip {
	return &model.Trip{
		ID:                id,
		CurrentLocation:   "Austin, TX",
		PickupLocation:    "Waco, TX",
		DropoffLocation:   "Dallas, TX",
		CurrentCycleUsed:  62,
		TotalDistance:     1100,
		EstimatedDuration: 12,
		DailyLogs: []model.DailyLogSummary{
			{Date: start.Format("2006-01-02"), DrivingHours: 12, OnDutyHours: 1.5, OffDutyHours: 10.5, TotalCycleHours: 75.5},
		},
	}
}

// WriteTrip writes one trip object to name under the base directory
func (g *TripGenerator) WriteTrip(name string, trip *model.Trip) (string, error) {
	return g.write(name, trip)
}

// WriteTrips writes a JSON array of trips to name under the base directory
func (g *TripGenerator) WriteTrips(name string, trips ...*model.Trip) (string, error) {
	return g.write(name, trips)
}

// WriteRaw writes arbitrary content, e.g. to exercise parse failures
func (g *TripGenerator) WriteRaw(name, content string) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(content), 0644)
}

func (g *TripGenerator) write(name string, v interface{}) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode fixture: %w", err)
	}
	return g.WriteRaw(name, string(data))
}
