package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultGridSize is the number of cells along each axis of the board.
const DefaultGridSize = 28

var ErrEmptyName = errors.New("task name cannot be empty")

type Task struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Importance     float64    `json:"importance"`
	Urgency        float64    `json:"urgency"`
	ImportanceStep float64    `json:"importance_step"`
	UrgencyStep    float64    `json:"urgency_step"`
	CreatedAt      time.Time  `json:"created_at"`
	LastUpdate     time.Time  `json:"last_update"`
	EndDate        *time.Time `json:"end_date"`
}

// NewTask builds a task placed at (importance, urgency). CreatedAt and
// LastUpdate are both set to now, truncated to whole seconds.
func NewTask(name, description string, importance, urgency, importanceStep, urgencyStep float64, endDate *time.Time, now time.Time) *Task {
	ts := Timestamp(now)
	return &Task{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    description,
		Importance:     importance,
		Urgency:        urgency,
		ImportanceStep: importanceStep,
		UrgencyStep:    urgencyStep,
		CreatedAt:      ts,
		LastUpdate:     ts,
		EndDate:        endDate,
	}
}

// Validate reports whether the task can be placed on a board.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// HasDeadline reports whether an end date is set.
func (t *Task) HasDeadline() bool {
	return t.EndDate != nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.EndDate != nil {
		d := *t.EndDate
		c.EndDate = &d
	}
	return &c
}

// Timestamp normalizes t to the precision of the persisted format: whole
// seconds, local time, no monotonic reading.
func Timestamp(t time.Time) time.Time {
	return t.Truncate(time.Second).Local()
}
