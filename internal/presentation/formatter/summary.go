package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/util"
)

const summaryWidth = 60

// SummaryFormatter prints a plain-text compliance and cost report.
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

// Format aggregates whatever sections the report carries into one summary.
func (f *SummaryFormatter) Format(w io.Writer, report Report) error {
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}
	rule := strings.Repeat("=", summaryWidth)

	p(rule)
	p(strings.TrimRight(util.CenterText("ELD Trip Summary Report", summaryWidth), " "))
	p(rule)
	p("")

	empty := true

	if len(report.Trips) > 0 {
		empty = false
		var distance, duration float64
		compliant := 0
		for _, trip := range report.Trips {
			distance += trip.TotalDistance
			duration += trip.EstimatedDuration
			if tripCompliant(trip) {
				compliant++
			}
		}
		costs := analyzer.EstimateCosts(distance, 0)

		p("Trips:")
		p("  Count: %s", util.FormatNumber(len(report.Trips)))
		p("  Compliant: %d", compliant)
		p("  Total Distance: %s", util.FormatDistance(distance))
		p("  Total Duration: %s", util.FormatHours(duration))
		p("  Fuel + Tolls: %s", util.FormatCurrency(costs.Fuel+costs.Tolls))
		p("")
	}

	if len(report.Logs) > 0 {
		empty = false
		first, last := report.Logs[0].Date, report.Logs[len(report.Logs)-1].Date
		if first == last {
			p("Date Range: %s", first)
		} else {
			p("Date Range: %s to %s", first, last)
		}
		p("")

		totals := analyzer.Totals(report.Logs)
		p("Daily Logs:")
		p("  Logs: %d", totals.Logs)
		p("  Compliant: %d (%s, %s)", totals.Compliant, util.FormatPercent(totals.Rate), analyzer.RateLevel(totals.Rate))
		p("  Within %gh Driving: %d", constants.MaxDrivingHours, totals.DrivingWithin)
		p("  Within %gh Cycle: %d", constants.MaxCycleHours, totals.CycleWithin)
		p("  30-min Breaks: %d", totals.WithBreaks)
		p("")

		groups := analyzer.GroupByTrip(report.Logs)
		if len(groups) > 1 {
			p("By Trip:")
			p(strings.Repeat("-", summaryWidth))
			for _, g := range groups {
				p("  Trip %d %s: %d logs, %s compliant", g.TripID, g.TripRoute, len(g.Rows), util.FormatPercent(g.ComplianceRate))
			}
			p("")
		}
	}

	if len(report.Timelines) > 0 {
		empty = false
		p("Timeline:")
		for _, tl := range report.Timelines {
			p("  %s %s: %d events, driving %s, %s", tl.DayLabel(), tl.Date, len(tl.Events),
				util.FormatHoursOf(tl.Summary.DrivingHours, constants.MaxDrivingHours), statusText(tl.Summary.Compliant))
		}
		p("")
	}

	if a := report.Analysis; a != nil {
		empty = false
		p("Trip %d: %s", a.TripID, a.Route)
		p("  Distance: %s over %d days", util.FormatDistance(a.TotalDistance), a.Days)
		p("  Cycle: %s %s", util.FormatHoursOf(a.Status.ProjectedCycle, constants.MaxCycleHours),
			util.CreateProgressBar(a.Status.ProjectedCycle/constants.MaxCycleHours*100, 22))
		p("  Compliance Rate: %s", util.FormatPercent(a.Compliance.ComplianceRate))
		p("  Estimated Cost: %s", util.FormatCurrency(a.Costs.Total))
		for _, v := range a.Compliance.Violations {
			p("  ! %s: %s", v.Date, strings.Join(v.Issues, "; "))
		}
		p("")
	}

	if empty {
		p("No data to summarize")
		p("")
	}
	p(rule)
	return nil
}
