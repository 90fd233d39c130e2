package matrix

import (
	"cmp"
	"slices"

	"github.com/nick-dorsch/things2do/pkg/models"
)

// Midpoint is the value both axes are compared against.
func Midpoint(gridSize int) float64 {
	return float64(gridSize) / 2
}

// ClassifyQuadrant buckets a task against mid. A task sitting exactly on the
// midline counts as important (>=) and urgent (<=). Higher raw urgency is
// less urgent.
func ClassifyQuadrant(t *models.Task, mid float64) models.Quadrant {
	switch {
	case t.Importance >= mid && t.Urgency <= mid:
		return models.QuadrantImportantUrgent
	case t.Importance >= mid && t.Urgency > mid:
		return models.QuadrantImportantNotUrgent
	case t.Importance < mid && t.Urgency <= mid:
		return models.QuadrantNotImportantUrgent
	default:
		return models.QuadrantNeither
	}
}

// Key is the ascending sort key of a task: quadrant rank, then importance
// descending, then effective urgency (gridSize - urgency) descending.
type Key struct {
	Quadrant      models.Quadrant
	NegImportance float64
	NegUrgency    float64
}

// PriorityKey computes the key of t on a grid of the given size.
func PriorityKey(t *models.Task, gridSize int) Key {
	return Key{
		Quadrant:      ClassifyQuadrant(t, Midpoint(gridSize)),
		NegImportance: -t.Importance,
		NegUrgency:    -(float64(gridSize) - t.Urgency),
	}
}

// Compare orders keys lexicographically.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Quadrant, o.Quadrant); c != 0 {
		return c
	}
	if c := cmp.Compare(k.NegImportance, o.NegImportance); c != 0 {
		return c
	}
	return cmp.Compare(k.NegUrgency, o.NegUrgency)
}

func (k Key) Less(o Key) bool {
	return k.Compare(o) < 0
}

// SortByPriority sorts tasks in place, display order first. Ties keep their
// relative order.
func SortByPriority(tasks []*models.Task, gridSize int) {
	slices.SortStableFunc(tasks, func(a, b *models.Task) int {
		return PriorityKey(a, gridSize).Compare(PriorityKey(b, gridSize))
	})
}
