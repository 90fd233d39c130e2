// Package matrix holds the position model of the Eisenhower board: daily
// drift, clamping to the grid, quadrant classification and priority order.
//
// Every function here is pure with respect to package state. The only inputs
// are the task, the grid size and the instant supplied by the caller.
package matrix

import (
	"time"

	"github.com/nick-dorsch/things2do/pkg/models"
)

const day = 24 * time.Hour

// ElapsedDays returns the number of whole 24h periods between from and to,
// rounded toward negative infinity.
func ElapsedDays(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// Advance moves the task by its steps for every whole day elapsed since
// LastUpdate. When no full day has passed nothing changes, LastUpdate
// included, so repeated sub-day calls never lose a step. It reports whether
// the task moved. Callers must Clamp afterwards.
func Advance(t *models.Task, now time.Time) bool {
	days := ElapsedDays(t.LastUpdate, now)
	if days <= 0 {
		return false
	}
	t.Importance += t.ImportanceStep * float64(days)
	t.Urgency += t.UrgencyStep * float64(days)
	t.LastUpdate = models.Timestamp(now)
	return true
}

// Clamp forces both coordinates into [0, gridSize-1].
func Clamp(t *models.Task, gridSize int) {
	t.Importance = clamp(t.Importance, gridSize)
	t.Urgency = clamp(t.Urgency, gridSize)
}

// AdvanceAndClamp is the per-task step of the daily tick.
func AdvanceAndClamp(t *models.Task, now time.Time, gridSize int) bool {
	moved := Advance(t, now)
	Clamp(t, gridSize)
	return moved
}

func clamp(v float64, gridSize int) float64 {
	upper := float64(gridSize - 1)
	if v < 0 {
		return 0
	}
	if v > upper {
		return upper
	}
	return v
}
