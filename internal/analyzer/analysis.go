package analyzer

import (
	"math"

	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// CostEstimate is a rough trip cost breakdown in dollars
type CostEstimate struct {
	Fuel    float64 `json:"fuel"`
	Tolls   float64 `json:"tolls"`
	Lodging float64 `json:"lodging"`
	Total   float64 `json:"total"`
}

// Efficiency relates distance to time
type Efficiency struct {
	AverageSpeed      float64 `json:"average_speed"`
	DrivingEfficiency float64 `json:"driving_efficiency"`
	DailyProgress     float64 `json:"daily_progress"`
}

// TripAnalysis holds the presentational aggregates for one trip
type TripAnalysis struct {
	TripID              int             `json:"trip_id"`
	Route               string          `json:"route"`
	TotalDistance       float64         `json:"total_distance"`
	EstimatedDuration   float64         `json:"estimated_duration"`
	Days                int             `json:"days"`
	TotalDrivingHours   float64         `json:"total_driving_hours"`
	TotalOnDutyHours    float64         `json:"total_on_duty_hours"`
	AverageDailyDriving float64         `json:"average_daily_driving"`
	RestStops           int             `json:"rest_stops"`
	FuelStops           int             `json:"fuel_stops"`
	Costs               CostEstimate    `json:"costs"`
	Efficiency          Efficiency      `json:"efficiency"`
	Compliance          ComplianceStats `json:"compliance"`
	Status              TripStatus      `json:"status"`
}

// TripStatus reports whether the planned trip fits in the remaining cycle
type TripStatus struct {
	CycleUsed        float64 `json:"cycle_used"`
	ProjectedCycle   float64 `json:"projected_cycle"`
	WithinCycleLimit bool    `json:"within_cycle_limit"`
}

// AnalyzeTrip computes the trip overview numbers
func AnalyzeTrip(trip *model.Trip) TripAnalysis {
	days := len(trip.DailyLogs)

	var driving, onDuty float64
	for _, log := range trip.DailyLogs {
		driving += log.DrivingHours
		onDuty += log.OnDutyHours
	}

	analysis := TripAnalysis{
		TripID:              trip.ID,
		Route:               trip.Route(),
		TotalDistance:       trip.TotalDistance,
		EstimatedDuration:   trip.EstimatedDuration,
		Days:                days,
		TotalDrivingHours:   driving,
		TotalOnDutyHours:    onDuty,
		AverageDailyDriving: driving / float64(max(days, 1)),
		RestStops:           len(trip.RestStops),
		FuelStops:           int(math.Floor(trip.TotalDistance / constants.FuelStopIntervalKm)),
		Costs:               EstimateCosts(trip.TotalDistance, days),
		Compliance:          Compliance(trip.SortedLogs()),
		Status:              StatusOf(trip),
	}
	analysis.Efficiency = efficiencyOf(trip, driving)

	return analysis
}

// EstimateCosts prices fuel and tolls per km and lodging per day
func EstimateCosts(distanceKm float64, days int) CostEstimate {
	c := CostEstimate{
		Fuel:    distanceKm * constants.FuelCostPerKm,
		Tolls:   distanceKm * constants.TollCostPerKm,
		Lodging: float64(days) * constants.LodgingPerDay,
	}
	c.Total = c.Fuel + c.Tolls + c.Lodging
	return c
}

// Missing duration and driving values count as one hour, missing days as one.
func efficiencyOf(trip *model.Trip, totalDriving float64) Efficiency {
	duration := trip.EstimatedDuration
	if duration == 0 {
		duration = 1
	}
	if totalDriving == 0 {
		totalDriving = 1
	}
	days := max(len(trip.DailyLogs), 1)

	return Efficiency{
		AverageSpeed:      trip.TotalDistance / duration,
		DrivingEfficiency: duration / totalDriving * 100,
		DailyProgress:     trip.TotalDistance / float64(days),
	}
}

// StatusOf checks current cycle plus the estimated duration against 70 hours
func StatusOf(trip *model.Trip) TripStatus {
	projected := trip.CurrentCycleUsed + trip.EstimatedDuration
	return TripStatus{
		CycleUsed:        trip.CurrentCycleUsed,
		ProjectedCycle:   projected,
		WithinCycleLimit: projected <= constants.MaxCycleHours,
	}
}
