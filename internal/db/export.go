package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nick-dorsch/things2do/internal/store"
)

// EnableAutoExport writes the task file at path after every successful
// Save.
func (db *DB) EnableAutoExport(path string, logger *slog.Logger) {
	db.SetOnChange(func(ctx context.Context) {
		// Export is best-effort; the database write already succeeded.
		if err := db.ExportFile(ctx, path); err != nil && logger != nil {
			logger.Warn("failed to export task file", "path", path, "error", err)
		}
	})
}

// ExportFile writes every stored task to path in the events file format.
func (db *DB) ExportFile(ctx context.Context, path string) error {
	tasks, err := db.Load(ctx)
	if err != nil {
		return err
	}
	return store.WriteFile(path, tasks)
}

// ImportFile replaces the stored tasks with the contents of an events file.
// Malformed records are skipped and reported through logger.
func (db *DB) ImportFile(ctx context.Context, path string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open task file: %w", err)
	}

	res, err := store.Deserialize(data, time.Now())
	if err != nil {
		return 0, err
	}
	if logger != nil {
		store.LogResult(logger, res)
	}

	if err := db.Save(ctx, res.Tasks); err != nil {
		return 0, err
	}
	return len(res.Tasks), nil
}
