package matrix

import (
	"testing"
	"time"

	"github.com/nick-dorsch/things2do/pkg/models"
)

var base = time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)

func newTask(x, y, stepX, stepY float64) *models.Task {
	return models.NewTask("task", "", x, y, stepX, stepY, nil, base)
}

func TestElapsedDays(t *testing.T) {
	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", base, 0},
		{"just under a day", base.Add(23*time.Hour + 59*time.Minute), 0},
		{"exactly one day", base.Add(24 * time.Hour), 1},
		{"three and a half days", base.Add(84 * time.Hour), 3},
		{"one hour back", base.Add(-time.Hour), -1},
		{"exactly two days back", base.Add(-48 * time.Hour), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedDays(base, tt.to); got != tt.want {
				t.Errorf("ElapsedDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAdvanceNoFullDay(t *testing.T) {
	task := newTask(10, 10, 1, 1)
	if Advance(task, base.Add(23*time.Hour)) {
		t.Fatal("Expected no movement before a full day")
	}
	if task.Importance != 10 || task.Urgency != 10 {
		t.Errorf("Expected position unchanged, got (%v, %v)", task.Importance, task.Urgency)
	}
	if !task.LastUpdate.Equal(base) {
		t.Errorf("Expected LastUpdate unchanged, got %v", task.LastUpdate)
	}
}

func TestAdvanceIdempotentWithinDay(t *testing.T) {
	task := newTask(10, 10, 1, -1)
	first := base.Add(25 * time.Hour)
	if !Advance(task, first) {
		t.Fatal("Expected first call to move the task")
	}
	x, y, last := task.Importance, task.Urgency, task.LastUpdate

	if Advance(task, first.Add(20*time.Hour)) {
		t.Fatal("Expected second call within the same day to be a no-op")
	}
	if task.Importance != x || task.Urgency != y || !task.LastUpdate.Equal(last) {
		t.Errorf("Second call changed the task: (%v, %v, %v)", task.Importance, task.Urgency, task.LastUpdate)
	}
}

func TestAdvanceRepeatedSubDayCallsKeepSteps(t *testing.T) {
	task := newTask(0, 0, 1, 0)
	for h := 6; h < 24; h += 6 {
		Advance(task, base.Add(time.Duration(h)*time.Hour))
	}
	Advance(task, base.Add(24*time.Hour))
	if task.Importance != 1 {
		t.Errorf("Expected importance 1 after a full day of sub-day calls, got %v", task.Importance)
	}
}

func TestAdvanceNDays(t *testing.T) {
	for _, n := range []int{1, 2, 7, 30} {
		task := newTask(5, 20, 0.25, -0.5)
		now := base.Add(time.Duration(n)*24*time.Hour + 3*time.Hour)
		Advance(task, now)
		if want := 5 + 0.25*float64(n); task.Importance != want {
			t.Errorf("n=%d: importance = %v, want %v", n, task.Importance, want)
		}
		if want := 20 - 0.5*float64(n); task.Urgency != want {
			t.Errorf("n=%d: urgency = %v, want %v", n, task.Urgency, want)
		}
		if !task.LastUpdate.Equal(now) {
			t.Errorf("n=%d: LastUpdate = %v, want %v", n, task.LastUpdate, now)
		}
	}
}

func TestAdvanceClockBackwards(t *testing.T) {
	task := newTask(10, 10, 1, 1)
	if Advance(task, base.Add(-72*time.Hour)) {
		t.Fatal("Expected no movement when now precedes LastUpdate")
	}
	if !task.LastUpdate.Equal(base) {
		t.Errorf("LastUpdate moved backwards to %v", task.LastUpdate)
	}
}

func TestClampExtremeSteps(t *testing.T) {
	const grid = models.DefaultGridSize
	tests := []struct {
		name         string
		stepX, stepY float64
		wantX, wantY float64
	}{
		{"large positive", 1e9, 1e9, grid - 1, grid - 1},
		{"large negative", -1e9, -1e9, 0, 0},
		{"mixed", 1e6, -1e6, grid - 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := newTask(14, 14, tt.stepX, tt.stepY)
			AdvanceAndClamp(task, base.Add(240*time.Hour), grid)
			if task.Importance != tt.wantX || task.Urgency != tt.wantY {
				t.Errorf("got (%v, %v), want (%v, %v)", task.Importance, task.Urgency, tt.wantX, tt.wantY)
			}
			if task.Importance < 0 || task.Importance > grid-1 || task.Urgency < 0 || task.Urgency > grid-1 {
				t.Errorf("coordinates out of bounds: (%v, %v)", task.Importance, task.Urgency)
			}
		})
	}
}

func TestClampKeepsFractions(t *testing.T) {
	task := newTask(3.75, 26.5, 0, 0)
	Clamp(task, models.DefaultGridSize)
	if task.Importance != 3.75 || task.Urgency != 26.5 {
		t.Errorf("Clamp changed in-range values: (%v, %v)", task.Importance, task.Urgency)
	}
}
