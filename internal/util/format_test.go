package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "zero", input: 0, expected: "0"},
		{name: "hundreds", input: 999, expected: "999"},
		{name: "thousands", input: 1500, expected: "1,500"},
		{name: "millions", input: 2500000, expected: "2,500,000"},
		{name: "negative", input: -1200, expected: "-1,200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "0.0h", FormatHours(0))
	assert.Equal(t, "9.5h", FormatHours(9.5))
	assert.Equal(t, "12.0h/11h", FormatHoursOf(12, 11))
	assert.Equal(t, "45.3h/70h", FormatHoursOf(45.25, 70))
	assert.Equal(t, "0.3h", FormatHours(0.25))
	assert.Equal(t, "-0.3h", FormatHours(-0.25))
	assert.Equal(t, "10.1h/11h", FormatHoursOf(10.05+1e-9, 11))
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name     string
		km       float64
		expected string
	}{
		{name: "short haul", km: 320.4, expected: "320 km"},
		{name: "rounds up", km: 999.6, expected: "1,000 km"},
		{name: "long haul", km: 2450, expected: "2,450 km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDistance(tt.km))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{name: "zero", amount: 0, expected: "$0.00"},
		{name: "cents", amount: 12.5, expected: "$12.50"},
		{name: "thousands", amount: 1234.56, expected: "$1,234.56"},
		{name: "negative", amount: -80, expected: "-$80.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCurrency(tt.amount))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "2h 30m", FormatDuration(150*time.Minute))
	assert.Equal(t, "10h 0m", FormatDuration(10*time.Hour))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "66.7%", FormatPercent(200.0/3))
	assert.Equal(t, "100.0%", FormatPercent(100))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "   ab", PadLeft("ab", 5))
	assert.Equal(t, 5, GetDisplayWidth(PadRight("Highway I-90", 5)))
	assert.Equal(t, " ok ", CenterText("ok", 4))
}

func TestCreateProgressBar(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]", CreateProgressBar(50, 12))
	assert.Equal(t, "[██████████]", CreateProgressBar(150, 12))
	assert.Equal(t, "[░░░░░░░░░░]", CreateProgressBar(-5, 12))
}
