package constants

import "time"

// FMCSA Hours-of-Service limits used for display flags. Compliance itself
// is decided upstream; these only drive badges and "exceeded by" figures.
const (
	MaxDrivingHours   = 11.0
	MaxCycleHours     = 70.0
	CycleWindowDays   = 8
	BreakThresholdHrs = 8.0
	MinRestHours      = 10.0
)

// Timeline synthesis timings
const (
	DayStartHour      = 6
	PostTripHour      = 19
	RestStartHour     = 20
	PreTripDuration   = 30 * time.Minute
	BreakDuration     = 30 * time.Minute
	StopDuration      = 60 * time.Minute
	MaxSegmentMinutes = 240

	// MaxDrivingSegments bounds the driving chunks of one day; larger
	// upstream values are drawn as this many chunks.
	MaxDrivingSegments = 1000
)

// Trip analysis rates
const (
	FuelStopIntervalKm = 1000.0
	FuelCostPerKm      = 0.35
	TollCostPerKm      = 0.05
	LodgingPerDay      = 80.0
)

// Display defaults
const (
	DefaultDriverName    = "Professional Driver"
	VehicleNumberOffset  = 100
	DocumentTitle        = "ELD Daily Logs - FMCSA Compliant"
	DocumentGeneratedBy  = "Generated by ELD Trip Planner"
	DefaultCacheTTLHours = 24
)
