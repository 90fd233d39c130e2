package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/pkg/models"
)

func stubUI(t *testing.T) {
	t.Helper()
	originalMenu, originalBoard := runMenu, runBoardUI
	t.Cleanup(func() {
		runMenu, runBoardUI = originalMenu, originalBoard
	})
}

func TestExecuteRoutesRootToMenu(t *testing.T) {
	setupTestStore(t)
	stubUI(t)

	called := false
	runMenu = func() (string, error) {
		called = true
		return "status", nil
	}

	var stderr bytes.Buffer
	output, err := captureStdout(t, func() error {
		return execute([]string{"--config", configPath, "--data-path", dataPath}, &stderr)
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called {
		t.Fatal("expected root execution to open the menu")
	}
	if !strings.Contains(output, "Total Tasks:     2") {
		t.Errorf("expected status output, got: %s", output)
	}
}

func TestExecuteMenuQuit(t *testing.T) {
	stubUI(t)
	runMenu = func() (string, error) { return "", nil }

	var stderr bytes.Buffer
	if err := execute([]string{}, &stderr); err != nil {
		t.Fatalf("expected nil error when the menu is quit, got %v", err)
	}
}

func TestExecuteBoardSavesOnExit(t *testing.T) {
	setupTestStore(t)
	stubUI(t)

	var gotInterval time.Duration
	runBoardUI = func(b *board.Board, interval time.Duration) error {
		gotInterval = interval
		_, err := b.Add(models.NewTask("from board", "", 1, 1, 0, 0, nil, time.Now()))
		return err
	}

	var stderr bytes.Buffer
	err := execute([]string{"--config", configPath, "--data-path", dataPath, "board"}, &stderr)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if gotInterval != 24*time.Hour {
		t.Errorf("expected default tick interval 24h, got %v", gotInterval)
	}
	tasks := loadTasks(t)
	if len(tasks) != 3 || tasks[2].Name != "from board" {
		t.Errorf("expected board changes saved, got %v", tasks)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dataPath), "things2do.log")); err != nil {
		t.Errorf("expected log file next to the task file: %v", err)
	}
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	err := execute([]string{"work"}, &stderr)
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "unknown command: work") {
		t.Fatalf("expected unknown command error, got: %v", err)
	}
}

func TestExecuteHelpShowsCommandsAndFlags(t *testing.T) {
	var stderr bytes.Buffer
	err := execute([]string{"--help"}, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected help error, got: %v", err)
	}

	output := stderr.String()
	if !strings.Contains(output, "Running `things2do` with no command opens the menu.") {
		t.Fatalf("expected root menu help text, got: %s", output)
	}
	for _, want := range []string{"board", "tick", "-data-path", "-db-path", "-backend", "-config", "-verbose"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output, got: %s", want, output)
		}
	}
}

func TestExecuteVerboseLogsDebug(t *testing.T) {
	setupTestStore(t)

	var stderr bytes.Buffer
	_, err := captureStdout(t, func() error {
		return execute([]string{"--verbose", "--config", configPath, "--data-path", filepath.Join(t.TempDir(), "none.json"), "list"}, &stderr)
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(stderr.String(), "level=DEBUG") {
		t.Errorf("expected debug logging with --verbose, got: %s", stderr.String())
	}
}
