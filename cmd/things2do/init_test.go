package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nick-dorsch/things2do/internal/config"
	"github.com/nick-dorsch/things2do/internal/db"
	"github.com/nick-dorsch/things2do/internal/store"
	"github.com/nick-dorsch/things2do/pkg/models"
)

// resetForInit leaves the paths at their defaults so init rebases them onto
// the target directory.
func resetForInit(t *testing.T) {
	t.Helper()
	resetFlags(t, t.TempDir())
	configPath = filepath.Join(config.DefaultDir, config.DefaultFileName)
	dataPath = ""
	dbPath = ""
}

func TestInit(t *testing.T) {
	resetForInit(t)
	tmpDir := t.TempDir()

	output, err := captureStdout(t, func() error { return runInit([]string{tmpDir}) })
	if err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	dataDir := filepath.Join(tmpDir, config.DefaultDir)
	gitignore, err := os.ReadFile(filepath.Join(dataDir, ".gitignore"))
	if err != nil {
		t.Fatalf("expected .gitignore: %v", err)
	}
	if !strings.Contains(string(gitignore), "things2do.db*") {
		t.Errorf("unexpected .gitignore: %s", gitignore)
	}

	cfg, err := config.Load(filepath.Join(dataDir, config.DefaultFileName))
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if cfg.GridSize != models.DefaultGridSize {
		t.Errorf("expected grid size %d, got %d", models.DefaultGridSize, cfg.GridSize)
	}

	if !strings.Contains(output, "✓ things2do initialized successfully") {
		t.Errorf("unexpected output: %s", output)
	}
	if strings.Contains(output, "database") {
		t.Errorf("expected no database for the json backend: %s", output)
	}
}

func TestInitKeepsExistingConfig(t *testing.T) {
	resetForInit(t)
	tmpDir := t.TempDir()

	cfgPath := filepath.Join(tmpDir, config.DefaultDir, config.DefaultFileName)
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("grid_size: 10\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := captureStdout(t, func() error { return runInit([]string{tmpDir}) }); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.GridSize != 10 {
		t.Errorf("expected existing config kept, got grid size %d", cfg.GridSize)
	}
}

func TestInitSQLiteImportsTaskFile(t *testing.T) {
	resetForInit(t)
	backend = config.BackendSQLite
	tmpDir := t.TempDir()

	now := time.Now()
	eventsPath := filepath.Join(tmpDir, config.DefaultDir, "events.json")
	if err := store.WriteFile(eventsPath, []*models.Task{
		models.NewTask("one", "", 1, 1, 0, 0, nil, now),
		models.NewTask("two", "", 2, 2, 0, 0, nil, now),
	}); err != nil {
		t.Fatalf("failed to write task file: %v", err)
	}

	output, err := captureStdout(t, func() error { return runInit([]string{tmpDir}) })
	if err != nil {
		t.Fatalf("runInit failed: %v", err)
	}
	if !strings.Contains(output, "✓ Imported 2 task(s)") {
		t.Errorf("unexpected output: %s", output)
	}

	database, err := db.Open(filepath.Join(tmpDir, config.DefaultDir, "things2do.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer database.Close()

	n, err := database.CountTasks(context.Background())
	if err != nil {
		t.Fatalf("CountTasks failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 tasks in database, got %d", n)
	}
}
