package analyzer

import (
	"testing"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrip() *model.Trip {
	return &model.Trip{
		ID:                7,
		CurrentLocation:   "Chicago, IL",
		PickupLocation:    "Gary, IN",
		DropoffLocation:   "Denver, CO",
		CurrentCycleUsed:  20,
		TotalDistance:     2450,
		EstimatedDuration: 28,
		RestStops:         []model.RestStop{{Sequence: 1, Location: "Omaha, NE", DurationHours: 10}},
		DailyLogs: []model.DailyLogSummary{
			{Date: "2024-05-01", DrivingHours: 10, OnDutyHours: 2, OffDutyHours: 12, TotalCycleHours: 32},
			{Date: "2024-05-02", DrivingHours: 12, OnDutyHours: 1.5, OffDutyHours: 10.5, TotalCycleHours: 45.5},
			{Date: "2024-05-03", DrivingHours: 6, OnDutyHours: 2, OffDutyHours: 16, TotalCycleHours: 53.5},
		},
	}
}

func TestAnalyzeTrip(t *testing.T) {
	a := AnalyzeTrip(sampleTrip())

	assert.Equal(t, 7, a.TripID)
	assert.Equal(t, "Chicago, IL → Denver, CO", a.Route)
	assert.Equal(t, 3, a.Days)
	assert.InDelta(t, 28, a.TotalDrivingHours, 1e-9)
	assert.InDelta(t, 5.5, a.TotalOnDutyHours, 1e-9)
	assert.InDelta(t, 28.0/3, a.AverageDailyDriving, 1e-9)
	assert.Equal(t, 1, a.RestStops)
	assert.Equal(t, 2, a.FuelStops)

	assert.InDelta(t, 857.5, a.Costs.Fuel, 1e-9)
	assert.InDelta(t, 122.5, a.Costs.Tolls, 1e-9)
	assert.InDelta(t, 240, a.Costs.Lodging, 1e-9)
	assert.InDelta(t, 1220, a.Costs.Total, 1e-9)

	assert.InDelta(t, 87.5, a.Efficiency.AverageSpeed, 1e-9)
	assert.InDelta(t, 100, a.Efficiency.DrivingEfficiency, 1e-9)
	assert.InDelta(t, 2450.0/3, a.Efficiency.DailyProgress, 1e-9)

	assert.InDelta(t, 48, a.Status.ProjectedCycle, 1e-9)
	assert.True(t, a.Status.WithinCycleLimit)
}

func TestAnalyzeTrip_EmptyTrip(t *testing.T) {
	a := AnalyzeTrip(&model.Trip{ID: 1, TotalDistance: 999})

	assert.Zero(t, a.Days)
	assert.Zero(t, a.AverageDailyDriving)
	assert.Zero(t, a.FuelStops)
	assert.InDelta(t, 999, a.Efficiency.AverageSpeed, 1e-9)
	assert.Zero(t, a.Compliance.TotalDays)
	assert.Zero(t, a.Compliance.ComplianceRate)
	assert.NotNil(t, a.Compliance.Violations)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		used     float64
		duration float64
		within   bool
	}{
		{name: "plenty of cycle", used: 10, duration: 20, within: true},
		{name: "exactly at limit", used: 40, duration: 30, within: true},
		{name: "over limit", used: 55, duration: 20, within: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StatusOf(&model.Trip{CurrentCycleUsed: tt.used, EstimatedDuration: tt.duration})
			assert.Equal(t, tt.within, s.WithinCycleLimit)
		})
	}
}

func TestCompliance(t *testing.T) {
	logs := sampleTrip().DailyLogs
	logs = append(logs, model.DailyLogSummary{Date: "2024-05-04", DrivingHours: 11.5, TotalCycleHours: 72.25})

	stats := Compliance(logs)

	assert.Equal(t, 4, stats.TotalDays)
	assert.Equal(t, 2, stats.CompliantDays)
	assert.InDelta(t, 50, stats.ComplianceRate, 1e-9)
	assert.Equal(t, 3, stats.DaysWithBreaks)
	assert.InDelta(t, 103.2142857, stats.CycleUtilization, 1e-6)
	assert.False(t, stats.FullyCompliant())

	require.Len(t, stats.Violations, 2)
	assert.Equal(t, "2024-05-02", stats.Violations[0].Date)
	assert.Equal(t, []string{"Driving hours exceeded: 12h/11h"}, stats.Violations[0].Issues)
	assert.Equal(t, []string{
		"Driving hours exceeded: 11.5h/11h",
		"Cycle hours exceeded: 72.25h/70h",
	}, stats.Violations[1].Issues)
}

func TestRateLevel(t *testing.T) {
	assert.Equal(t, "good", RateLevel(90))
	assert.Equal(t, "warn", RateLevel(70))
	assert.Equal(t, "bad", RateLevel(69.9))
}

func TestLogRows(t *testing.T) {
	other := &model.Trip{
		ID:              3,
		CurrentLocation: "Austin, TX",
		DropoffLocation: "Dallas, TX",
		DailyLogs:       []model.DailyLogSummary{{Date: "2024-05-02", DrivingHours: 4, TotalCycleHours: 10}},
	}
	trips := []*model.Trip{sampleTrip(), other}

	tests := []struct {
		name      string
		filter    LogFilter
		wantDates []string
		wantTrips []int
	}{
		{
			name:      "all",
			filter:    LogFilter{},
			wantDates: []string{"2024-05-01", "2024-05-02", "2024-05-02", "2024-05-03"},
			wantTrips: []int{7, 3, 7, 7},
		},
		{
			name:      "by trip",
			filter:    LogFilter{TripID: 3},
			wantDates: []string{"2024-05-02"},
			wantTrips: []int{3},
		},
		{
			name:      "by date substring",
			filter:    LogFilter{Date: "05-0"},
			wantDates: []string{"2024-05-01", "2024-05-02", "2024-05-02", "2024-05-03"},
			wantTrips: []int{7, 3, 7, 7},
		},
		{
			name:      "no match",
			filter:    LogFilter{Date: "2023"},
			wantDates: []string{},
			wantTrips: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := LogRows(trips, tt.filter)
			dates := make([]string, 0, len(rows))
			ids := make([]int, 0, len(rows))
			for _, r := range rows {
				dates = append(dates, r.Date)
				ids = append(ids, r.TripID)
			}
			assert.Equal(t, tt.wantDates, dates)
			assert.Equal(t, tt.wantTrips, ids)
		})
	}
}

func TestGroupByTripAndTotals(t *testing.T) {
	rows := LogRows([]*model.Trip{sampleTrip()}, LogFilter{})
	groups := GroupByTrip(rows)

	require.Len(t, groups, 1)
	assert.Equal(t, 7, groups[0].TripID)
	assert.Len(t, groups[0].Rows, 3)
	assert.InDelta(t, 200.0/3, groups[0].ComplianceRate, 1e-9)

	totals := Totals(rows)
	assert.Equal(t, 3, totals.Logs)
	assert.Equal(t, 2, totals.Compliant)
	assert.Equal(t, 2, totals.WithBreaks)
	assert.Equal(t, 2, totals.DrivingWithin)
	assert.Equal(t, 3, totals.CycleWithin)
}

func TestCycleOverview(t *testing.T) {
	seed := time.Date(2024, 12, 29, 17, 0, 0, 0, time.UTC)
	days := CycleOverview(sampleTrip(), seed)

	require.Len(t, days, 8)
	assert.Equal(t, "Dec 29", days[0].Label)
	assert.Equal(t, "Jan 5", days[7].Label)

	assert.True(t, days[0].Active)
	assert.InDelta(t, 10, days[0].DrivingHours, 1e-9)
	assert.True(t, days[2].WithinCycle)
	assert.False(t, days[3].Active)
	assert.Equal(t, 8, days[7].Day)
}
