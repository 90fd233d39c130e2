// Package store persists the task collection as a JSON array of flat
// records.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nick-dorsch/things2do/pkg/models"
)

// Store loads and saves the whole task collection.
type Store interface {
	Load(ctx context.Context) ([]*models.Task, error)
	Save(ctx context.Context, tasks []*models.Task) error
}

// FileStore keeps tasks in a single JSON file.
type FileStore struct {
	Path   string
	Logger *slog.Logger
	Now    func() time.Time
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{Path: path, Logger: logger, Now: time.Now}
}

// Load reads the file. A missing or unreadable file is not an error: the
// collection starts empty. Rejected records and degraded fields are logged.
func (s *FileStore) Load(ctx context.Context) ([]*models.Task, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Logger.Debug("no task file, starting empty", "path", s.Path)
		return nil, nil
	}
	if err != nil {
		s.Logger.Warn("could not read task file, starting empty", "path", s.Path, "error", err)
		return nil, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	res, err := Deserialize(data, s.now())
	if err != nil {
		s.Logger.Warn("could not decode task file, starting empty", "path", s.Path, "error", err)
		return nil, nil
	}
	LogResult(s.Logger, res)
	return res.Tasks, nil
}

// Save writes all tasks atomically through a temporary file in the same
// directory.
func (s *FileStore) Save(ctx context.Context, tasks []*models.Task) error {
	return WriteFile(s.Path, tasks)
}

func (s *FileStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Encode renders tasks the way they are stored on disk.
func Encode(tasks []*models.Task) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(Serialize(tasks)); err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes tasks and replaces path with the result.
func WriteFile(path string, tasks []*models.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create task directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "events-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// LogResult reports rejected records and degraded fields.
func LogResult(logger *slog.Logger, res *Result) {
	for _, e := range res.Rejected {
		logger.Warn("skipping malformed task record", "index", e.Index, "field", e.Field, "error", e.Err)
	}
	for _, a := range res.Anomalies {
		logger.Warn("task field unreadable, using default",
			"index", a.Index, "name", a.Name, "field", a.Field, "value", a.Value, "error", a.Err)
	}
}
