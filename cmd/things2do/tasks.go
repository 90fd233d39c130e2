package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/internal/store"
	"github.com/nick-dorsch/things2do/pkg/models"
)

const noEndDate = "no end date"

func endDate(t *models.Task) string {
	if d := store.FormatDate(t.EndDate); d != nil {
		return *d
	}
	return noEndDate
}

func runList(args []string) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	order := listFlags.String("order", "priority", "Sort order (priority, insertion)")
	if err := listFlags.Parse(args); err != nil {
		return err
	}

	var tasks func(*board.Board) []*models.Task
	switch *order {
	case "priority":
		tasks = (*board.Board).Sorted
	case "insertion":
		tasks = (*board.Board).Tasks
	default:
		return fmt.Errorf("unknown order: %s", *order)
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Printf("%-36s %-24s %-22s %-10s %-10s %-12s\n", "ID", "NAME", "QUADRANT", "IMPORTANCE", "URGENCY", "END DATE")
	fmt.Println("----------------------------------------------------------------------------------------------------------------------")
	for _, t := range tasks(s.board) {
		fmt.Printf("%-36s %-24s %-22s %-10.2f %-10.2f %-12s\n", t.ID, t.Name, s.board.Quadrant(t), t.Importance, t.Urgency, endDate(t))
	}
	return nil
}

func runAdd(args []string) error {
	addFlags := flag.NewFlagSet("add", flag.ContinueOnError)
	name := addFlags.String("name", "", "Task name (required)")
	description := addFlags.String("description", "", "Task description")
	x := addFlags.Float64("x", 0, "Importance (x axis)")
	y := addFlags.Float64("y", 0, "Urgency (y axis, lower is more urgent)")
	stepX := addFlags.String("step-x", "0", "Importance change per day")
	stepY := addFlags.String("step-y", "0", "Urgency change per day")
	end := addFlags.String("end", "", "End date (YYYY-MM-DD)")
	if err := addFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	t := models.NewTask(*name, *description, *x, *y,
		models.ParseStep(*stepX), models.ParseStep(*stepY), models.ParseEndDate(*end), time.Now())
	added, err := s.board.Add(t)
	if err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}

	fmt.Printf("✓ Added '%s' at (%g, %g) in %s\n", added.Name, added.Importance, added.Urgency, s.board.Quadrant(&added))
	fmt.Printf("  id: %s\n", added.ID)
	return nil
}

func runEdit(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: things2do edit <id> [-name ...] [-description ...] [-x ...] [-y ...] [-step-x ...] [-step-y ...] [-end ...]")
	}
	id := args[0]

	editFlags := flag.NewFlagSet("edit", flag.ContinueOnError)
	name := editFlags.String("name", "", "New name")
	description := editFlags.String("description", "", "New description")
	x := editFlags.Float64("x", 0, "New importance")
	y := editFlags.Float64("y", 0, "New urgency")
	stepX := editFlags.String("step-x", "", "New importance change per day")
	stepY := editFlags.String("step-y", "", "New urgency change per day")
	end := editFlags.String("end", "", "New end date (YYYY-MM-DD, empty clears)")
	if err := editFlags.Parse(args[1:]); err != nil {
		return err
	}

	set := map[string]bool{}
	editFlags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return errors.New("nothing to change")
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	updated, err := s.board.Update(id, func(t *models.Task) {
		if set["name"] {
			t.Name = *name
		}
		if set["description"] {
			t.Description = *description
		}
		if set["step-x"] {
			t.ImportanceStep = models.ParseStep(*stepX)
		}
		if set["step-y"] {
			t.UrgencyStep = models.ParseStep(*stepY)
		}
		if set["end"] {
			t.EndDate = models.ParseEndDate(*end)
		}
	})
	if err != nil {
		return err
	}

	if set["x"] || set["y"] {
		nx, ny := updated.Importance, updated.Urgency
		if set["x"] {
			nx = *x
		}
		if set["y"] {
			ny = *y
		}
		if updated, err = s.board.Move(id, nx, ny); err != nil {
			return err
		}
	}

	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Printf("✓ Updated '%s'\n", updated.Name)
	return nil
}

func runRemove(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: things2do remove <id>")
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	t, ok := s.board.Get(args[0])
	if !ok || !s.board.Remove(args[0]) {
		return fmt.Errorf("%w: %s", board.ErrNotFound, args[0])
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Printf("✓ Removed '%s'\n", t.Name)
	return nil
}

func runShow(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: things2do show <id>")
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	t, ok := s.board.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", board.ErrNotFound, args[0])
	}

	fmt.Printf("Name:        %s\n", t.Name)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Quadrant:    %s\n", s.board.Quadrant(&t))
	fmt.Printf("Position:    (%g, %g)\n", t.Importance, t.Urgency)
	fmt.Printf("Daily step:  (%+g, %+g)\n", t.ImportanceStep, t.UrgencyStep)
	fmt.Printf("Created:     %s\n", t.CreatedAt.Format(models.DateLayout))
	fmt.Printf("Last moved:  %s\n", store.FormatTimestamp(t.LastUpdate))
	fmt.Printf("End date:    %s\n", endDate(&t))
	return nil
}

// runTick applies the drift owed since each task last moved and saves it.
func runTick(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	tasks, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	b := board.New(cfg.GridSize, tasks)
	moved := b.Tick(time.Now())
	if moved > 0 {
		if err := st.Save(ctx, b.Tasks()); err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}
	}
	fmt.Printf("✓ %d of %d task(s) moved\n", moved, b.Len())
	return nil
}

func runStatus(args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	sorted := s.board.Sorted()
	counts := make(map[models.Quadrant]int)
	overdue := 0
	y, m, d := time.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	for _, t := range sorted {
		counts[s.board.Quadrant(t)]++
		if t.EndDate != nil && t.EndDate.Before(today) {
			overdue++
		}
	}

	fmt.Println("things2do Status")
	fmt.Println("================")
	fmt.Printf("Total Tasks:     %d\n", len(sorted))
	fmt.Printf("Overdue:         %d\n", overdue)

	fmt.Println("\nQuadrants:")
	for _, q := range models.Quadrants {
		fmt.Printf("  %-22s %d\n", q.String()+":", counts[q])
	}

	if len(sorted) > 0 {
		fmt.Println("\nNext Up:")
		for i, t := range sorted {
			if i >= 5 {
				break
			}
			fmt.Printf("  - %s (%s) - %s\n", t.Name, s.board.Quadrant(t), endDate(t))
		}
	}
	return nil
}

func runExport(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: things2do export <path>")
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := store.WriteFile(args[0], s.board.Tasks()); err != nil {
		return err
	}
	fmt.Printf("✓ Exported %d task(s) to %s\n", s.board.Len(), args[0])
	return nil
}

func runImport(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: things2do import <path>")
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open task file: %w", err)
	}
	res, err := store.Deserialize(data, time.Now())
	if err != nil {
		return err
	}
	store.LogResult(logger, res)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	b := board.New(cfg.GridSize, res.Tasks)
	if err := st.Save(ctx, b.Tasks()); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	fmt.Printf("✓ Imported %d task(s) from %s", b.Len(), path)
	if n := len(res.Rejected); n > 0 {
		fmt.Printf(" (%d skipped)", n)
	}
	fmt.Println()
	return nil
}
