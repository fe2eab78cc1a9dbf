package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/util"
)

const (
	minColumnWidth = 4
	minShrinkWidth = 8
)

// grid is a renderer-agnostic table: plain cell text plus alignment hints
type grid struct {
	title   string
	headers []string
	rows    [][]string
	total   []string
	right   map[int]bool
	status  int
	notes   []string
}

type TableFormatter struct {
	out      io.Writer
	styles   tableStyles
	maxWidth int
}

type tableStyles struct {
	title     lipgloss.Style
	compliant lipgloss.Style
	violation lipgloss.Style
	note      lipgloss.Style
}

// Option configures a TableFormatter
type Option func(*TableFormatter)

// WithMaxWidth shrinks the widest columns so tables fit in width cells.
// Zero means unlimited.
func WithMaxWidth(width int) Option {
	return func(f *TableFormatter) { f.maxWidth = width }
}

func NewTableFormatter(opts ...Option) *TableFormatter {
	f := &TableFormatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format draws one table per section. Colours follow the writer's
// capabilities, so a buffer or pipe gets plain text.
func (f *TableFormatter) Format(w io.Writer, report Report) error {
	r := lipgloss.NewRenderer(w)
	f.out = w
	f.styles = tableStyles{
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		compliant: r.NewStyle().Foreground(lipgloss.Color("42")),
		violation: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		note:      r.NewStyle().Foreground(lipgloss.Color("245")),
	}

	var grids []grid
	if report.Trips != nil {
		grids = append(grids, tripGrid(report.Trips))
	}
	if report.Logs != nil {
		grids = append(grids, logGrid(report.Logs))
	}
	for _, tl := range report.Timelines {
		grids = append(grids, timelineGrid(tl))
	}
	if report.Analysis != nil {
		grids = append(grids, analysisGrid(*report.Analysis))
	}

	for i, g := range grids {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f.render(g)
	}
	return nil
}

func (f *TableFormatter) render(g grid) {
	widths := calculateColumnWidths(g)
	fitWidths(widths, f.maxWidth)

	if g.title != "" {
		fmt.Fprintln(f.out, f.styles.title.Render(g.title))
	}
	f.printBorder(widths, "top")
	f.printRow(g, g.headers, widths, true)
	f.printBorder(widths, "middle")

	if len(g.rows) == 0 {
		blank := make([]string, len(widths))
		blank[0] = "No data"
		f.printRow(g, blank, widths, true)
	}
	for _, row := range g.rows {
		f.printRow(g, row, widths, false)
	}

	if g.total != nil {
		f.printBorder(widths, "middle")
		f.printRow(g, g.total, widths, false)
	}
	f.printBorder(widths, "bottom")

	for _, note := range g.notes {
		fmt.Fprintln(f.out, f.styles.note.Render(note))
	}
}

// calculateColumnWidths sizes each column to its widest cell in display cells
func calculateColumnWidths(g grid) []int {
	widths := make([]int, len(g.headers))
	measure := func(values []string) {
		for i, value := range values {
			if i < len(widths) && util.GetDisplayWidth(value) > widths[i] {
				widths[i] = util.GetDisplayWidth(value)
			}
		}
	}

	measure(g.headers)
	for _, row := range g.rows {
		measure(row)
	}
	measure(g.total)
	if len(g.rows) == 0 && len(widths) > 0 {
		measure([]string{"No data"})
	}

	for i := range widths {
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}
	return widths
}

// fitWidths trims the widest column one cell at a time until a row fits in
// maxWidth. Columns never shrink below minShrinkWidth.
func fitWidths(widths []int, maxWidth int) {
	if maxWidth <= 0 {
		return
	}
	total := 1
	for _, w := range widths {
		total += w + 3
	}
	for total > maxWidth {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minShrinkWidth {
			return
		}
		widths[widest]--
		total--
	}
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(f.out, b.String())
}

// printRow pads by display width and colours the status column
func (f *TableFormatter) printRow(g grid, values []string, widths []int, header bool) {
	var b strings.Builder
	b.WriteString("│")
	for i, width := range widths {
		value := ""
		if i < len(values) {
			value = values[i]
		}

		var cell string
		if g.right[i] && !header {
			cell = util.PadLeft(value, width)
		} else {
			cell = util.PadRight(value, width)
		}
		if !header && i == g.status {
			cell = f.statusCell(value, cell)
		}

		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" │")
	}
	fmt.Fprintln(f.out, b.String())
}

func (f *TableFormatter) statusCell(value, padded string) string {
	var style lipgloss.Style
	switch value {
	case StatusCompliant:
		style = f.styles.compliant
	case StatusViolation:
		style = f.styles.violation
	default:
		return padded
	}
	i := strings.Index(padded, value)
	if i < 0 {
		return padded
	}
	return padded[:i] + style.Render(value) + padded[i+len(value):]
}

func tripGrid(trips []*model.Trip) grid {
	g := grid{
		title:   "Trips",
		headers: []string{"ID", "Route", "Distance", "Duration", "Days", "Cycle Used", "Status"},
		right:   map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true},
		status:  6,
	}

	var distance, duration float64
	var days, compliant int
	for _, trip := range trips {
		ok := tripCompliant(trip)
		if ok {
			compliant++
		}
		g.rows = append(g.rows, []string{
			fmt.Sprintf("%d", trip.ID),
			trip.Route(),
			util.FormatDistance(trip.TotalDistance),
			util.FormatHours(trip.EstimatedDuration),
			fmt.Sprintf("%d", len(trip.DailyLogs)),
			util.FormatHoursOf(trip.CurrentCycleUsed, constants.MaxCycleHours),
			statusText(ok),
		})
		distance += trip.TotalDistance
		duration += trip.EstimatedDuration
		days += len(trip.DailyLogs)
	}

	if len(trips) > 0 {
		g.total = []string{
			"Total",
			fmt.Sprintf("%d trips, %d compliant", len(trips), compliant),
			util.FormatDistance(distance),
			util.FormatHours(duration),
			fmt.Sprintf("%d", days),
			"",
			"",
		}
	}
	return g
}

func logGrid(rows []analyzer.LogRow) grid {
	g := grid{
		title:   "Daily Logs",
		headers: []string{"Date", "Trip", "Driving", "On Duty", "Off Duty", "Cycle", "Break", "Status"},
		right:   map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
		status:  7,
	}

	for _, row := range rows {
		g.rows = append(g.rows, []string{
			row.Date,
			fmt.Sprintf("%d", row.TripID),
			util.FormatHoursOf(row.DrivingHours, constants.MaxDrivingHours),
			util.FormatHours(row.OnDutyHours),
			util.FormatHours(row.OffDutyHours),
			util.FormatHoursOf(row.TotalCycleHours, constants.MaxCycleHours),
			yesNo(row.BreakApplied),
			statusText(row.Compliant),
		})
	}

	if len(rows) > 0 {
		totals := analyzer.Totals(rows)
		g.total = []string{
			"Total",
			fmt.Sprintf("%d logs", totals.Logs),
			fmt.Sprintf("%d within", totals.DrivingWithin),
			"",
			"",
			fmt.Sprintf("%d within", totals.CycleWithin),
			fmt.Sprintf("%d", totals.WithBreaks),
			util.FormatPercent(totals.Rate),
		}
	}
	return g
}

func timelineGrid(tl model.DailyTimeline) grid {
	g := grid{
		title:   fmt.Sprintf("%s (%s)", tl.DayLabel(), tl.Date),
		headers: []string{"Time", "Status", "Location", "Remark"},
		right:   map[int]bool{},
		status:  -1,
	}
	for _, event := range tl.Events {
		g.rows = append(g.rows, []string{event.Time, event.Status.Label(), event.Location, event.Remark})
	}

	s := tl.Summary
	note := fmt.Sprintf("Driving %s  On Duty %s  Off Duty %s  Cycle %s  %s",
		util.FormatHoursOf(s.DrivingHours, constants.MaxDrivingHours),
		util.FormatHours(s.OnDutyHours),
		util.FormatHours(s.OffDutyHours),
		util.FormatHoursOf(s.TotalCycleHours, constants.MaxCycleHours),
		statusText(s.Compliant))
	g.notes = append(g.notes, note)
	if s.BreakApplied {
		g.notes = append(g.notes, "30-minute break applied after 8 hours of driving")
	}
	return g
}

func analysisGrid(a analyzer.TripAnalysis) grid {
	g := grid{
		title:   fmt.Sprintf("Trip %d Analysis", a.TripID),
		headers: []string{"Metric", "Value"},
		right:   map[int]bool{1: true},
		status:  1,
	}

	add := func(name, value string) {
		g.rows = append(g.rows, []string{name, value})
	}
	add("Route", a.Route)
	add("Distance", util.FormatDistance(a.TotalDistance))
	add("Estimated Duration", util.FormatHours(a.EstimatedDuration))
	add("Days", fmt.Sprintf("%d", a.Days))
	add("Driving Hours", util.FormatHours(a.TotalDrivingHours))
	add("On Duty Hours", util.FormatHours(a.TotalOnDutyHours))
	add("Avg Daily Driving", util.FormatHours(a.AverageDailyDriving))
	add("Rest Stops", fmt.Sprintf("%d", a.RestStops))
	add("Fuel Stops", fmt.Sprintf("%d", a.FuelStops))
	add("Fuel Cost", util.FormatCurrency(a.Costs.Fuel))
	add("Tolls", util.FormatCurrency(a.Costs.Tolls))
	add("Lodging", util.FormatCurrency(a.Costs.Lodging))
	add("Total Cost", util.FormatCurrency(a.Costs.Total))
	add("Average Speed", fmt.Sprintf("%.1f km/h", a.Efficiency.AverageSpeed))
	add("Driving Efficiency", util.FormatPercent(a.Efficiency.DrivingEfficiency))
	add("Daily Progress", util.FormatDistance(a.Efficiency.DailyProgress))
	add("Compliance Rate", util.FormatPercent(a.Compliance.ComplianceRate))
	add("Days With Breaks", fmt.Sprintf("%d", a.Compliance.DaysWithBreaks))
	add("Cycle Utilization", util.FormatPercent(a.Compliance.CycleUtilization))
	add("Projected Cycle", util.FormatHoursOf(a.Status.ProjectedCycle, constants.MaxCycleHours))
	add("Status", statusText(a.Compliance.FullyCompliant() && a.Status.WithinCycleLimit))

	for _, v := range a.Compliance.Violations {
		g.notes = append(g.notes, fmt.Sprintf("%s: %s", v.Date, strings.Join(v.Issues, "; ")))
	}
	return g
}
