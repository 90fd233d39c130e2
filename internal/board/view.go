package board

import (
	"github.com/nick-dorsch/things2do/internal/store"
	"github.com/nick-dorsch/things2do/pkg/models"
)

// TaskView is a task as shown to a presentation layer: the persisted record
// plus its quadrant.
type TaskView struct {
	store.Record
	Quadrant     models.Quadrant `json:"quadrant"`
	QuadrantRank int             `json:"quadrant_rank"`
}

// Views returns every task in priority order, or in insertion order when
// sorted is false.
func (b *Board) Views(sorted bool) []TaskView {
	if sorted {
		return b.viewsOf(b.Sorted())
	}
	return b.viewsOf(b.Tasks())
}

// View renders a single task.
func (b *Board) View(t *models.Task) TaskView {
	return b.viewsOf([]*models.Task{t})[0]
}

func (b *Board) viewsOf(tasks []*models.Task) []TaskView {
	records := store.Serialize(tasks)
	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		q := b.Quadrant(t)
		views[i] = TaskView{Record: records[i], Quadrant: q, QuadrantRank: int(q)}
	}
	return views
}
