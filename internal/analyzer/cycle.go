package analyzer

import (
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// CycleDay is one slot of the rolling 8-day overview
type CycleDay struct {
	Day          int       `json:"day"`
	Date         time.Time `json:"date"`
	Label        string    `json:"label"`
	Active       bool      `json:"active"`
	DrivingHours float64   `json:"driving_hours"`
	CycleHours   float64   `json:"cycle_hours"`
	WithinCycle  bool      `json:"within_cycle"`
}

// CycleOverview lays the trip's logs onto 8 calendar slots starting at
// seed. Slots past the last log are inactive ("Future").
func CycleOverview(trip *model.Trip, seed time.Time) []CycleDay {
	start := time.Date(seed.Year(), seed.Month(), seed.Day(), 0, 0, 0, 0, seed.Location())
	logs := trip.SortedLogs()

	days := make([]CycleDay, constants.CycleWindowDays)
	for i := range days {
		date := start.AddDate(0, 0, i)
		days[i] = CycleDay{
			Day:   i + 1,
			Date:  date,
			Label: date.Format("Jan 2"),
		}
		if i < len(logs) {
			days[i].Active = true
			days[i].DrivingHours = logs[i].DrivingHours
			days[i].CycleHours = logs[i].TotalCycleHours
			days[i].WithinCycle = logs[i].TotalCycleHours <= constants.MaxCycleHours
		}
	}
	return days
}
