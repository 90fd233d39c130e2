package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date-only format used for end dates.
const DateLayout = "2006-01-02"

// ParseStep reads a per-day delta typed by the user. Anything that is not a
// finite number counts as zero.
func ParseStep(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseEndDate reads a YYYY-MM-DD date in local time. Empty or invalid input
// means no deadline.
func ParseEndDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &d
}
