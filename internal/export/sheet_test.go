package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeed = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func testTrip(days int) *model.Trip {
	trip := &model.Trip{
		ID:                12,
		CurrentLocation:   "Chicago, IL",
		PickupLocation:    "Gary, IN",
		DropoffLocation:   "Denver, CO",
		CurrentCycleUsed:  15,
		TotalDistance:     1620,
		EstimatedDuration: 22,
	}
	for i := 0; i < days; i++ {
		trip.DailyLogs = append(trip.DailyLogs, model.DailyLogSummary{
			Date:            time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			DrivingHours:    9.5,
			OnDutyHours:     2,
			OffDutyHours:    12.5,
			TotalCycleHours: 15 + float64(i+1)*11.5,
		})
	}
	return trip
}

func TestLogSheet_Capture(t *testing.T) {
	sheet := NewLogSheet(testTrip(2), testSeed)

	raster, err := sheet.Capture(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SheetWidth*2, raster.Width)
	assert.Equal(t, int(sheet.Height()*SheetScale), raster.Height)
	assert.Equal(t, raster.Width, raster.Image.Bounds().Dx())

	cfg, err := png.DecodeConfig(bytes.NewReader(raster.PNG))
	require.NoError(t, err)
	assert.Equal(t, raster.Width, cfg.Width)
	assert.Equal(t, raster.Height, cfg.Height)
}

func TestLogSheet_CaptureRejectsOversizedRegion(t *testing.T) {
	trip := testTrip(1)
	trip.DailyLogs[0].DrivingHours = 1e5
	sheet := NewLogSheet(trip, testSeed)
	require.Greater(t, sheet.Height()*SheetScale, float64(MaxRasterHeight))

	raster, err := sheet.Capture(context.Background())
	assert.Nil(t, raster)

	var captureErr *CaptureError
	require.True(t, errors.As(err, &captureErr))
	assert.Contains(t, captureErr.Reason, "region too large")
}

func TestLogSheet_HeightGrowsWithDays(t *testing.T) {
	one := NewLogSheet(testTrip(1), testSeed)
	three := NewLogSheet(testTrip(3), testSeed)
	assert.Greater(t, three.Height(), one.Height())
}

func TestLogSheet_CaptureErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	zeroWidth := NewLogSheet(testTrip(1), testSeed)
	zeroWidth.Width = 0

	tests := []struct {
		name  string
		sheet *LogSheet
		ctx   context.Context
	}{
		{name: "no daily logs", sheet: NewLogSheet(testTrip(0), testSeed), ctx: context.Background()},
		{name: "zero size region", sheet: zeroWidth, ctx: context.Background()},
		{name: "cancelled", sheet: NewLogSheet(testTrip(1), testSeed), ctx: cancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster, err := tt.sheet.Capture(tt.ctx)
			assert.Nil(t, raster)

			var captureErr *CaptureError
			require.True(t, errors.As(err, &captureErr))
			assert.Contains(t, err.Error(), "capture log sheet")
		})
	}
}
