package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/penwyp/go-eld-planner/internal/core/constants"
)

// Trip is a planned trip as returned by the trip API
type Trip struct {
	ID                int               `json:"id"`
	CurrentLocation   string            `json:"current_location"`
	PickupLocation    string            `json:"pickup_location"`
	DropoffLocation   string            `json:"dropoff_location"`
	CurrentCycleUsed  float64           `json:"current_cycle_used"`
	TotalDistance     float64           `json:"total_distance"`
	EstimatedDuration float64           `json:"estimated_duration"`
	DriverName        string            `json:"driver_name,omitempty"`
	VehicleID         string            `json:"vehicle_id,omitempty"`
	CreatedAt         string            `json:"created_at,omitempty"`
	Legs              []RouteLeg        `json:"legs"`
	RestStops         []RestStop        `json:"rest_stops"`
	DailyLogs         []DailyLogSummary `json:"daily_logs"`
}

type RouteLeg struct {
	ID            int     `json:"id,omitempty"`
	Sequence      int     `json:"sequence"`
	StartLocation string  `json:"start_location"`
	EndLocation   string  `json:"end_location"`
	Distance      float64 `json:"distance"`
	Duration      float64 `json:"duration"`
	Instructions  string  `json:"instructions"`
}

type RestStop struct {
	ID            int     `json:"id,omitempty"`
	Sequence      int     `json:"sequence"`
	Location      string  `json:"location"`
	DurationHours float64 `json:"duration_hours"`
	Reason        string  `json:"reason,omitempty"`
}

// DailyLogSummary is the upstream aggregate for one calendar day. Values are
// displayed as-is and never validated here.
type DailyLogSummary struct {
	ID              int     `json:"id,omitempty"`
	Date            string  `json:"date"`
	DrivingHours    float64 `json:"driving_hours"`
	OnDutyHours     float64 `json:"on_duty_hours"`
	OffDutyHours    float64 `json:"off_duty_hours"`
	TotalCycleHours float64 `json:"total_cycle_hours"`
}

// IsCompliant reports driving within 11h and cycle within 70h
func (l DailyLogSummary) IsCompliant() bool {
	return l.DrivingHours <= constants.MaxDrivingHours && l.TotalCycleHours <= constants.MaxCycleHours
}

// NeedsBreak reports whether the day's driving triggers the 30-minute break
func (l DailyLogSummary) NeedsBreak() bool {
	return l.DrivingHours > constants.BreakThresholdHrs
}

// DrivingExceededBy is the driving overage in hours, zero when within limit
func (l DailyLogSummary) DrivingExceededBy() float64 {
	return math.Max(0, l.DrivingHours-constants.MaxDrivingHours)
}

// CycleExceededBy is the cycle overage in hours, zero when within limit
func (l DailyLogSummary) CycleExceededBy() float64 {
	return math.Max(0, l.TotalCycleHours-constants.MaxCycleHours)
}

// Summarize attaches the display flags
func (l DailyLogSummary) Summarize() DaySummary {
	return DaySummary{
		DailyLogSummary: l,
		Compliant:       l.IsCompliant(),
		BreakApplied:    l.NeedsBreak(),
		DrivingExceeded: l.DrivingExceededBy(),
		CycleExceeded:   l.CycleExceededBy(),
	}
}

// TripRequest is the body accepted by the create endpoint
type TripRequest struct {
	CurrentLocation  string  `json:"current_location"`
	PickupLocation   string  `json:"pickup_location"`
	DropoffLocation  string  `json:"dropoff_location"`
	CurrentCycleUsed float64 `json:"current_cycle_used"`
}

// Validate checks the request the way the trip form does before submitting
func (r TripRequest) Validate() error {
	switch {
	case r.CurrentLocation == "":
		return fmt.Errorf("current location is required")
	case r.PickupLocation == "":
		return fmt.Errorf("pickup location is required")
	case r.DropoffLocation == "":
		return fmt.Errorf("dropoff location is required")
	case r.CurrentCycleUsed < 0 || r.CurrentCycleUsed > constants.MaxCycleHours:
		return fmt.Errorf("current cycle used must be between 0 and 70 hours, got %.1f", r.CurrentCycleUsed)
	}
	return nil
}

// Driver returns the driver name or the default
func (t *Trip) Driver() string {
	if t.DriverName != "" {
		return t.DriverName
	}
	return constants.DefaultDriverName
}

// Vehicle returns the vehicle id or the "Truck <id+100>" default
func (t *Trip) Vehicle() string {
	if t.VehicleID != "" {
		return t.VehicleID
	}
	return fmt.Sprintf("Truck %d", t.ID+constants.VehicleNumberOffset)
}

// Origin is where day one starts
func (t *Trip) Origin() string {
	return t.CurrentLocation
}

// Pickup falls back to the origin when no pickup location is set
func (t *Trip) Pickup() string {
	if t.PickupLocation != "" {
		return t.PickupLocation
	}
	return t.CurrentLocation
}

// SortedLogs returns the daily logs ordered by date. The input is not modified.
func (t *Trip) SortedLogs() []DailyLogSummary {
	logs := make([]DailyLogSummary, len(t.DailyLogs))
	copy(logs, t.DailyLogs)
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date < logs[j].Date
	})
	return logs
}

// Route renders "origin → dropoff"
func (t *Trip) Route() string {
	return fmt.Sprintf("%s → %s", t.CurrentLocation, t.DropoffLocation)
}
