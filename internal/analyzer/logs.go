package analyzer

import (
	"sort"
	"strings"

	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// LogRow is a daily log flattened with its trip context
type LogRow struct {
	model.DailyLogSummary
	TripID            int     `json:"trip_id"`
	TripRoute         string  `json:"trip_route"`
	TotalDistance     float64 `json:"total_distance"`
	EstimatedDuration float64 `json:"estimated_duration"`
	Compliant         bool    `json:"compliant"`
	BreakApplied      bool    `json:"break_applied"`
}

// LogFilter narrows log rows. Zero TripID matches all trips; Date matches
// by substring so "2024-05" selects a month.
type LogFilter struct {
	TripID int
	Date   string
}

func (f LogFilter) matches(row LogRow) bool {
	if f.TripID != 0 && row.TripID != f.TripID {
		return false
	}
	return f.Date == "" || strings.Contains(row.Date, f.Date)
}

// LogRows flattens every trip's daily logs, filters them and sorts by
// date then trip.
func LogRows(trips []*model.Trip, filter LogFilter) []LogRow {
	rows := make([]LogRow, 0)
	for _, trip := range trips {
		for _, log := range trip.DailyLogs {
			row := LogRow{
				DailyLogSummary:   log,
				TripID:            trip.ID,
				TripRoute:         trip.Route(),
				TotalDistance:     trip.TotalDistance,
				EstimatedDuration: trip.EstimatedDuration,
				Compliant:         log.IsCompliant(),
				BreakApplied:      log.NeedsBreak(),
			}
			if filter.matches(row) {
				rows = append(rows, row)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].TripID < rows[j].TripID
	})
	return rows
}

// TripLogGroup is the per-trip slice of filtered rows with its rate
type TripLogGroup struct {
	TripID         int      `json:"trip_id"`
	TripRoute      string   `json:"trip_route"`
	Rows           []LogRow `json:"rows"`
	ComplianceRate float64  `json:"compliance_rate"`
}

// GroupByTrip groups rows by trip in ascending trip id order
func GroupByTrip(rows []LogRow) []TripLogGroup {
	index := make(map[int]int)
	var groups []TripLogGroup
	for _, row := range rows {
		i, ok := index[row.TripID]
		if !ok {
			i = len(groups)
			index[row.TripID] = i
			groups = append(groups, TripLogGroup{TripID: row.TripID, TripRoute: row.TripRoute})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	for i := range groups {
		compliant := 0
		for _, row := range groups[i].Rows {
			if row.Compliant {
				compliant++
			}
		}
		groups[i].ComplianceRate = Rate(compliant, len(groups[i].Rows))
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].TripID < groups[j].TripID })
	return groups
}

// RowTotals counts rows overall, compliant, and within each individual limit
type RowTotals struct {
	Logs          int     `json:"logs"`
	Compliant     int     `json:"compliant"`
	Rate          float64 `json:"rate"`
	WithBreaks    int     `json:"with_breaks"`
	DrivingWithin int     `json:"driving_within"`
	CycleWithin   int     `json:"cycle_within"`
}

// Totals aggregates the filtered rows
func Totals(rows []LogRow) RowTotals {
	var t RowTotals
	t.Logs = len(rows)
	for _, row := range rows {
		if row.Compliant {
			t.Compliant++
		}
		if row.BreakApplied {
			t.WithBreaks++
		}
		if row.DrivingExceededBy() == 0 {
			t.DrivingWithin++
		}
		if row.CycleExceededBy() == 0 {
			t.CycleWithin++
		}
	}
	t.Rate = Rate(t.Compliant, t.Logs)
	return t
}
