package formatter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/core/model"
)

// CSVFormatter writes raw numbers, one header line per section. Sections are
// separated by an empty record.
type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)

	var sections [][][]string
	if report.Trips != nil {
		sections = append(sections, tripRecords(report.Trips))
	}
	if report.Logs != nil {
		sections = append(sections, logRecords(report.Logs))
	}
	if len(report.Timelines) > 0 {
		sections = append(sections, timelineRecords(report.Timelines))
	}
	if report.Analysis != nil {
		sections = append(sections, analysisRecords(*report.Analysis))
	}

	for i, records := range sections {
		if i > 0 {
			if err := cw.Write(nil); err != nil {
				return err
			}
		}
		if err := cw.WriteAll(records); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func tripRecords(trips []*model.Trip) [][]string {
	records := [][]string{{
		"id", "current_location", "pickup_location", "dropoff_location",
		"total_distance", "estimated_duration", "current_cycle_used", "days", "status",
	}}
	for _, trip := range trips {
		records = append(records, []string{
			strconv.Itoa(trip.ID),
			trip.CurrentLocation,
			trip.PickupLocation,
			trip.DropoffLocation,
			num(trip.TotalDistance),
			num(trip.EstimatedDuration),
			num(trip.CurrentCycleUsed),
			strconv.Itoa(len(trip.DailyLogs)),
			statusText(tripCompliant(trip)),
		})
	}
	return records
}

func logRecords(rows []analyzer.LogRow) [][]string {
	records := [][]string{{
		"date", "trip_id", "driving_hours", "on_duty_hours", "off_duty_hours",
		"total_cycle_hours", "break_applied", "status",
	}}
	for _, row := range rows {
		records = append(records, []string{
			row.Date,
			strconv.Itoa(row.TripID),
			num(row.DrivingHours),
			num(row.OnDutyHours),
			num(row.OffDutyHours),
			num(row.TotalCycleHours),
			strconv.FormatBool(row.BreakApplied),
			statusText(row.Compliant),
		})
	}
	return records
}

func timelineRecords(timelines []model.DailyTimeline) [][]string {
	records := [][]string{{"date", "day", "time", "status", "location", "remark"}}
	for _, tl := range timelines {
		for _, event := range tl.Events {
			records = append(records, []string{
				tl.Date,
				strconv.Itoa(tl.DayIndex + 1),
				event.Time,
				event.Status.String(),
				event.Location,
				event.Remark,
			})
		}
	}
	return records
}

func analysisRecords(a analyzer.TripAnalysis) [][]string {
	return [][]string{
		{"metric", "value"},
		{"trip_id", strconv.Itoa(a.TripID)},
		{"route", a.Route},
		{"total_distance", num(a.TotalDistance)},
		{"estimated_duration", num(a.EstimatedDuration)},
		{"days", strconv.Itoa(a.Days)},
		{"total_driving_hours", num(a.TotalDrivingHours)},
		{"total_on_duty_hours", num(a.TotalOnDutyHours)},
		{"rest_stops", strconv.Itoa(a.RestStops)},
		{"fuel_stops", strconv.Itoa(a.FuelStops)},
		{"fuel_cost", strconv.FormatFloat(a.Costs.Fuel, 'f', 2, 64)},
		{"tolls", strconv.FormatFloat(a.Costs.Tolls, 'f', 2, 64)},
		{"lodging", strconv.FormatFloat(a.Costs.Lodging, 'f', 2, 64)},
		{"total_cost", strconv.FormatFloat(a.Costs.Total, 'f', 2, 64)},
		{"compliance_rate", strconv.FormatFloat(a.Compliance.ComplianceRate, 'f', 1, 64)},
		{"cycle_utilization", strconv.FormatFloat(a.Compliance.CycleUtilization, 'f', 1, 64)},
		{"within_cycle_limit", strconv.FormatBool(a.Status.WithinCycleLimit)},
	}
}
