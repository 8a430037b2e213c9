// Package utils provides formatting helpers for the command-line output.
package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Millify converts a number to a human-readable string with SI suffixes.
// For example: 1000 -> "1K", 1500000 -> "1.5M".
func Millify(n int, precision int) string {
	if precision < 0 {
		precision = 2
	}

	abs := math.Abs(float64(n))
	sign := ""
	if n < 0 {
		sign = "-"
	}

	suffixes := []struct {
		threshold float64
		suffix    string
	}{
		{1e15, "Q"},
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}

	for _, s := range suffixes {
		if abs >= s.threshold {
			return sign + formatFloat(abs/s.threshold, precision) + s.suffix
		}
	}

	return fmt.Sprintf("%d", n)
}

func formatFloat(f float64, precision int) string {
	s := fmt.Sprintf("%.*f", precision, f)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// HumanDuration renders d as "2h05m", "14m" or "42s", dropping seconds once
// the duration exceeds an hour.
func HumanDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Since formats how long ago t was, in whole days, e.g. "3652 days ago".
func Since(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}
