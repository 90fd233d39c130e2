// Package board owns the ordered task collection shown on the grid.
//
// The board is the only holder of task pointers. Every accessor hands out
// copies so a display never aliases what is persisted.
package board

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nick-dorsch/things2do/internal/matrix"
	"github.com/nick-dorsch/things2do/pkg/models"
)

var ErrNotFound = errors.New("task not found")

type Board struct {
	mu         sync.RWMutex
	gridSize   int
	tasks      []*models.Task
	onChange   func()
	onChangeMu sync.RWMutex
}

// New builds a board around tasks, keeping their order. Coordinates are
// clamped to the grid.
func New(gridSize int, tasks []*models.Task) *Board {
	if gridSize < 2 {
		gridSize = models.DefaultGridSize
	}
	b := &Board{gridSize: gridSize}
	for _, t := range tasks {
		c := t.Clone()
		matrix.Clamp(c, gridSize)
		b.tasks = append(b.tasks, c)
	}
	return b
}

func (b *Board) SetOnChange(fn func()) {
	b.onChangeMu.Lock()
	defer b.onChangeMu.Unlock()
	b.onChange = fn
}

func (b *Board) triggerChange() {
	b.onChangeMu.RLock()
	fn := b.onChange
	b.onChangeMu.RUnlock()

	if fn != nil {
		fn()
	}
}

func (b *Board) GridSize() int {
	return b.gridSize
}

func (b *Board) Midpoint() float64 {
	return matrix.Midpoint(b.gridSize)
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tasks)
}

// Add appends a task to the end of the collection.
func (b *Board) Add(t *models.Task) (models.Task, error) {
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	c := t.Clone()
	matrix.Clamp(c, b.gridSize)

	b.mu.Lock()
	for _, existing := range b.tasks {
		if existing.ID == c.ID {
			b.mu.Unlock()
			return models.Task{}, fmt.Errorf("task id already on board: %s", c.ID)
		}
	}
	b.tasks = append(b.tasks, c)
	b.mu.Unlock()

	b.triggerChange()
	return *c.Clone(), nil
}

// Get returns a copy of the task with the given id.
func (b *Board) Get(id string) (models.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return *b.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Tasks returns copies of every task in insertion order.
func (b *Board) Tasks() []*models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*models.Task, len(b.tasks))
	for i, t := range b.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Sorted returns copies of every task in display priority order.
func (b *Board) Sorted() []*models.Task {
	tasks := b.Tasks()
	matrix.SortByPriority(tasks, b.gridSize)
	return tasks
}

// Quadrant classifies t against this board's midpoint.
func (b *Board) Quadrant(t *models.Task) models.Quadrant {
	return matrix.ClassifyQuadrant(t, b.Midpoint())
}

// Update applies edit to the task and clamps the result. The id and both
// timestamps cannot be changed through an edit.
func (b *Board) Update(id string, edit func(t *models.Task)) (models.Task, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	orig := b.tasks[i]
	c := orig.Clone()
	edit(c)
	c.ID = orig.ID
	c.CreatedAt = orig.CreatedAt
	c.LastUpdate = orig.LastUpdate
	if err := c.Validate(); err != nil {
		b.mu.Unlock()
		return models.Task{}, err
	}
	matrix.Clamp(c, b.gridSize)
	b.tasks[i] = c
	b.mu.Unlock()

	b.triggerChange()
	return *c.Clone(), nil
}

// Move places the task at (x, y), clamped to the grid.
func (b *Board) Move(id string, x, y float64) (models.Task, error) {
	return b.Update(id, func(t *models.Task) {
		t.Importance = x
		t.Urgency = y
	})
}

// Remove deletes the task with the given id.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return false
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	b.mu.Unlock()

	b.triggerChange()
	return true
}

// TaskAt returns the first task, in insertion order, whose truncated
// coordinates fall in the given cell.
func (b *Board) TaskAt(cellX, cellY int) (models.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.tasks {
		if int(t.Importance) == cellX && int(t.Urgency) == cellY {
			return *t.Clone(), true
		}
	}
	return models.Task{}, false
}

// Tick advances and clamps every task for the whole days elapsed up to now.
// It returns how many tasks moved.
func (b *Board) Tick(now time.Time) int {
	b.mu.Lock()
	moved := 0
	for _, t := range b.tasks {
		if matrix.AdvanceAndClamp(t, now, b.gridSize) {
			moved++
		}
	}
	b.mu.Unlock()

	if moved > 0 {
		b.triggerChange()
	}
	return moved
}

func (b *Board) indexOf(id string) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
