package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"
	"github.com/penwyp/go-eld-planner/internal/analyzer"
	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/core/timeline"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// Sheet geometry in logical pixels. The raster is drawn at SheetScale times
// this size.
const (
	SheetWidth = 800
	SheetScale = 2.0

	// MaxRasterHeight caps the captured raster, about 200 MB of RGBA at
	// the default width.
	MaxRasterHeight = 32768

	sheetMargin  = 20.0
	cardPadding  = 14.0
	cardGap      = 16.0
	lineHeight   = 16.0
	tripCardH    = 96.0
	dayHeaderH   = 72.0
	tableHeaderH = 24.0
	rowH         = 22.0
	tilesH       = 58.0
	statusH      = 26.0
	certH        = 26.0
	cycleTitleH  = 30.0
	cycleTileH   = 74.0
	cycleFooterH = 44.0
)

// Region is something that can be rasterized for export
type Region interface {
	Capture(ctx context.Context) (*Raster, error)
}

// Raster is a captured region encoded as PNG
type Raster struct {
	Image  image.Image
	PNG    []byte
	Width  int
	Height int
}

// LogSheet is the printable ELD log for one trip
type LogSheet struct {
	Trip       *model.Trip
	Timelines  []model.DailyTimeline
	Cycle      []analyzer.CycleDay
	Compliance analyzer.ComplianceStats
	Width      int
	Scale      float64
}

// NewLogSheet synthesizes the trip's timelines and cycle overview for seed
func NewLogSheet(trip *model.Trip, seed time.Time) *LogSheet {
	return &LogSheet{
		Trip:       trip,
		Timelines:  timeline.SynthesizeTrip(trip, seed),
		Cycle:      analyzer.CycleOverview(trip, seed),
		Compliance: analyzer.Compliance(trip.SortedLogs()),
		Width:      SheetWidth,
		Scale:      SheetScale,
	}
}

// Height is the logical height of the rendered sheet
func (s *LogSheet) Height() float64 {
	h := sheetMargin + tripCardH + cardGap
	for _, tl := range s.Timelines {
		h += dayCardHeight(tl) + cardGap
	}
	h += cycleCardHeight() + sheetMargin
	return h
}

func dayCardHeight(tl model.DailyTimeline) float64 {
	return dayHeaderH + tableHeaderH + float64(len(tl.Events))*rowH + cardPadding + tilesH + statusH + certH + cardPadding
}

func cycleCardHeight() float64 {
	return cardPadding + cycleTitleH + cycleTileH + cycleFooterH + cardPadding
}

// Capture renders the sheet to a PNG raster
func (s *LogSheet) Capture(ctx context.Context) (raster *Raster, err error) {
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Reason: "cancelled before render", Err: err}
	}
	if s.Trip == nil || len(s.Timelines) == 0 {
		return nil, &CaptureError{Reason: "no daily logs to render"}
	}
	if s.Width <= 0 || s.Scale <= 0 {
		return nil, &CaptureError{Reason: fmt.Sprintf("invalid region size %d at scale %.1f", s.Width, s.Scale)}
	}

	if h := s.Height() * s.Scale; h > MaxRasterHeight {
		return nil, &CaptureError{Reason: fmt.Sprintf("region too large: %.0f px tall, limit %d", h, MaxRasterHeight)}
	}

	defer func() {
		if r := recover(); r != nil {
			raster = nil
			err = &CaptureError{Reason: "render panicked", Err: fmt.Errorf("%v", r)}
		}
	}()

	width := float64(s.Width)
	height := s.Height()
	pxW := int(width * s.Scale)
	pxH := int(height * s.Scale)

	dc := gg.NewContext(pxW, pxH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(s.Scale, s.Scale)

	y := sheetMargin
	y = s.drawTripCard(dc, y) + cardGap
	for _, tl := range s.Timelines {
		y = s.drawDayCard(dc, tl, y) + cardGap
	}
	s.drawCycleCard(dc, y)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, &CaptureError{Reason: "encode png", Err: err}
	}

	util.LogDebugf("Captured log sheet for trip %d: %dx%d px, %d days", s.Trip.ID, pxW, pxH, len(s.Timelines))
	return &Raster{Image: dc.Image(), PNG: buf.Bytes(), Width: pxW, Height: pxH}, nil
}

func (s *LogSheet) innerWidth() float64 {
	return float64(s.Width) - 2*sheetMargin
}

func card(dc *gg.Context, x, y, w, h float64) {
	dc.SetHexColor("#ffffff")
	dc.DrawRoundedRectangle(x, y, w, h, 6)
	dc.FillPreserve()
	dc.SetHexColor("#d1d5db")
	dc.SetLineWidth(1)
	dc.Stroke()
}

func text(dc *gg.Context, hex, s string, x, y float64) {
	dc.SetHexColor(hex)
	dc.DrawString(s, x, y)
}

// fit truncates s with "..." so it renders within maxWidth
func fit(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			return candidate
		}
	}
	return ""
}

func (s *LogSheet) drawTripCard(dc *gg.Context, y float64) float64 {
	x := sheetMargin
	w := s.innerWidth()
	card(dc, x, y, w, tripCardH)

	dc.SetHexColor("#1e40af")
	dc.DrawRectangle(x, y, w, 28)
	dc.Fill()
	text(dc, "#ffffff", "ELD DAILY LOGS - TRIP INFORMATION", x+cardPadding, y+18)

	ty := y + 28 + cardPadding + 6
	text(dc, "#111827", fmt.Sprintf("Trip ID: %d", s.Trip.ID), x+cardPadding, ty)
	text(dc, "#111827", fmt.Sprintf("Total Distance: %.0f km", s.Trip.TotalDistance), x+w/3, ty)
	text(dc, "#111827", fmt.Sprintf("Duration: %.1f hrs", s.Trip.EstimatedDuration), x+2*w/3, ty)

	ty += lineHeight + 4
	route := fmt.Sprintf("Route: %s to %s", s.Trip.CurrentLocation, s.Trip.DropoffLocation)
	text(dc, "#374151", fit(dc, route, w-2*cardPadding), x+cardPadding, ty)
	ty += lineHeight
	text(dc, "#374151", fmt.Sprintf("Driver: %s   Vehicle: %s", s.Trip.Driver(), s.Trip.Vehicle()), x+cardPadding, ty)

	return y + tripCardH
}

// column x offsets, relative to the card, and widths of the event table
var tableColumns = []struct {
	title string
	x, w  float64
}{
	{"Time", 0, 80},
	{"Location", 80, 170},
	{"Driving", 250, 70},
	{"On Duty", 320, 70},
	{"Off Duty", 390, 70},
	{"Remarks", 460, 270},
}

func (s *LogSheet) drawDayCard(dc *gg.Context, tl model.DailyTimeline, y float64) float64 {
	x := sheetMargin
	w := s.innerWidth()
	h := dayCardHeight(tl)
	card(dc, x, y, w, h)

	// header band
	dc.SetHexColor("#eff6ff")
	dc.DrawRectangle(x, y, w, dayHeaderH)
	dc.Fill()
	hx := x + cardPadding
	text(dc, "#1e3a8a", fmt.Sprintf("%s  (%s)", tl.Date, tl.DayLabel()), hx, y+20)
	text(dc, "#374151", fmt.Sprintf("Driver: %s", s.Trip.Driver()), hx, y+38)
	text(dc, "#374151", fmt.Sprintf("Vehicle: %s", s.Trip.Vehicle()), hx+w/3, y+38)
	text(dc, "#374151", fmt.Sprintf("Log ID: ELD-%d-%d", s.Trip.ID, tl.DayIndex+1), hx+2*w/3, y+38)
	text(dc, "#6b7280", "24-Hour Period: 12:00 AM - 11:59 PM", hx, y+56)

	// event table
	ty := y + dayHeaderH
	dc.SetHexColor("#f3f4f6")
	dc.DrawRectangle(x, ty, w, tableHeaderH)
	dc.Fill()
	for _, col := range tableColumns {
		text(dc, "#111827", col.title, hx+col.x, ty+16)
	}
	ty += tableHeaderH

	for i, e := range tl.Events {
		if i%2 == 1 {
			dc.SetHexColor("#f9fafb")
			dc.DrawRectangle(x+1, ty, w-2, rowH)
			dc.Fill()
		}
		cells := []string{e.Time, e.Location, "", "", "", e.Remark}
		switch e.Status {
		case model.StatusDriving:
			cells[2] = "X"
		case model.StatusOnDuty:
			cells[3] = "X"
		default:
			cells[4] = "X"
		}
		for c, col := range tableColumns {
			text(dc, "#1f2937", fit(dc, cells[c], col.w-6), hx+col.x, ty+15)
		}
		ty += rowH
	}

	// summary tiles
	ty += cardPadding
	sum := tl.Summary
	tiles := []struct {
		label, value, hex string
	}{
		{"Driving", fmt.Sprintf("%.1f / %gh", sum.DrivingHours, constants.MaxDrivingHours), "#2563eb"},
		{"On Duty", fmt.Sprintf("%.1fh", sum.OnDutyHours), "#d97706"},
		{"Off Duty", fmt.Sprintf("%.1fh", sum.OffDutyHours), "#059669"},
		{"Cycle", fmt.Sprintf("%.1f of %g hrs", sum.TotalCycleHours, constants.MaxCycleHours), "#7c3aed"},
	}
	tileW := (w - 2*cardPadding - 3*8) / 4
	for i, tile := range tiles {
		tx := hx + float64(i)*(tileW+8)
		dc.SetHexColor("#f9fafb")
		dc.DrawRoundedRectangle(tx, ty, tileW, tilesH-10, 4)
		dc.Fill()
		text(dc, "#6b7280", tile.label, tx+8, ty+18)
		text(dc, tile.hex, tile.value, tx+8, ty+36)
	}
	ty += tilesH

	// compliance line
	status, hex := "COMPLIANT", "#047857"
	if !sum.Compliant {
		status, hex = "VIOLATION", "#b91c1c"
	}
	text(dc, "#111827", "FMCSA Status:", hx, ty+16)
	text(dc, hex, status, hx+100, ty+16)
	if sum.BreakApplied {
		text(dc, "#1d4ed8", "[30-min Break Applied]", hx+200, ty+16)
	}
	ty += statusH

	text(dc, "#6b7280", "I certify that these entries are true and correct. Driver signature: ____________________", hx, ty+16)

	return y + h
}

func (s *LogSheet) drawCycleCard(dc *gg.Context, y float64) float64 {
	x := sheetMargin
	w := s.innerWidth()
	h := cycleCardHeight()
	card(dc, x, y, w, h)

	hx := x + cardPadding
	ty := y + cardPadding
	text(dc, "#111827", "8-Day Cycle Overview", hx, ty+16)
	text(dc, "#6b7280", "FMCSA 70-Hour Rule", hx+180, ty+16)
	ty += cycleTitleH

	n := len(s.Cycle)
	if n > 0 {
		gap := 6.0
		tileW := (w - 2*cardPadding - float64(n-1)*gap) / float64(n)
		for i, day := range s.Cycle {
			tx := hx + float64(i)*(tileW+gap)
			fill := "#f9fafb"
			if day.Active {
				fill = "#eff6ff"
			}
			dc.SetHexColor(fill)
			dc.DrawRoundedRectangle(tx, ty, tileW, cycleTileH-8, 4)
			dc.Fill()

			cx := tx + tileW/2
			dc.SetHexColor("#4b5563")
			dc.DrawStringAnchored(fmt.Sprintf("Day %d", day.Day), cx, ty+14, 0.5, 0)
			dc.DrawStringAnchored(day.Label, cx, ty+30, 0.5, 0)
			if !day.Active {
				dc.SetHexColor("#111827")
				dc.DrawStringAnchored("-", cx, ty+46, 0.5, 0)
				dc.SetHexColor("#9ca3af")
				dc.DrawStringAnchored("Future", cx, ty+62, 0.5, 0)
				continue
			}
			dc.SetHexColor("#111827")
			dc.DrawStringAnchored(fmt.Sprintf("%.1fh", day.DrivingHours), cx, ty+46, 0.5, 0)
			mark, hex := "OK", "#047857"
			if !day.WithinCycle {
				mark, hex = "OVER", "#b91c1c"
			}
			dc.SetHexColor(hex)
			dc.DrawStringAnchored(mark, cx, ty+62, 0.5, 0)
		}
	}
	ty += cycleTileH

	dc.SetHexColor("#e5e7eb")
	dc.DrawLine(hx, ty, x+w-cardPadding, ty)
	dc.Stroke()

	total := fmt.Sprintf("Total Trip: %.0f km | %.1f hours | %d days", s.Trip.TotalDistance, s.Trip.EstimatedDuration, len(s.Timelines))
	text(dc, "#374151", total, hx, ty+18)

	overall, hex := "FULLY COMPLIANT", "#047857"
	if !s.Compliance.FullyCompliant() {
		overall, hex = "COMPLIANCE ISSUES", "#b91c1c"
	}
	text(dc, "#374151", "Overall Compliance:", hx, ty+36)
	text(dc, hex, overall, hx+150, ty+36)

	return y + h
}
