package board

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often the board is recomputed.
const DefaultInterval = 24 * time.Hour

// Ticker recomputes a board on a fixed interval. It ticks once when Run
// starts, then every Interval until the context is done.
type Ticker struct {
	Board    *Board
	Interval time.Duration
	Now      func() time.Time
	OnTick   func(moved int)
	Logger   *slog.Logger
}

func NewTicker(b *Board, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		Board:    b,
		Interval: interval,
		Now:      time.Now,
		Logger:   slog.Default(),
	}
}

// Run blocks until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	t.tick()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.tick()
		}
	}
}

// Tick runs a single recomputation now.
func (t *Ticker) Tick() int {
	return t.tick()
}

func (t *Ticker) tick() int {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	moved := t.Board.Tick(now())
	if t.Logger != nil {
		t.Logger.Debug("board recomputed", "moved", moved, "tasks", t.Board.Len())
	}
	if t.OnTick != nil {
		t.OnTick(moved)
	}
	return moved
}
