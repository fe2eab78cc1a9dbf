package util

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders an integer with thousands separators
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatHours renders hours with one decimal, e.g. "9.5h"
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1fh", roundTenth(h))
}

// FormatHoursOf renders used/limit hours, e.g. "9.5h/11h"
func FormatHoursOf(used, limit float64) string {
	return fmt.Sprintf("%.1fh/%gh", roundTenth(used), limit)
}

// roundTenth rounds half away from zero, so 45.25 shows as 45.3
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatDistance renders kilometres with separators and no decimals
func FormatDistance(km float64) string {
	return printer.Sprintf("%d km", int64(math.Round(km)))
}

// FormatPercent renders a 0-100 value with one decimal
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatCurrency renders a dollar amount with separators and two decimals
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-" + printer.Sprintf("$%.2f", -amount)
	}
	return printer.Sprintf("$%.2f", amount)
}
