// Package config loads the board settings from a YAML file next to the
// task data.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nick-dorsch/things2do/pkg/models"
)

const (
	DefaultDir      = ".things2do"
	DefaultFileName = "config.yaml"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	GridSize     int           `yaml:"grid_size"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Storage      StorageConfig `yaml:"storage"`
	Web          WebConfig     `yaml:"web"`
}

type StorageConfig struct {
	// Backend is "json" (the events file) or "sqlite".
	Backend  string `yaml:"backend"`
	DataPath string `yaml:"data_path"`
	DBPath   string `yaml:"db_path"`
}

type WebConfig struct {
	Port string `yaml:"port"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		GridSize:     models.DefaultGridSize,
		TickInterval: 24 * time.Hour,
		Storage: StorageConfig{
			Backend:  BackendJSON,
			DataPath: filepath.Join(DefaultDir, "events.json"),
			DBPath:   filepath.Join(DefaultDir, "things2do.db"),
		},
		Web: WebConfig{
			Port: "8000",
		},
	}
}

// Load overlays the file at path on the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GridSize < 2 {
		return fmt.Errorf("grid_size must be at least 2, got %d", c.GridSize)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteDefault writes a commented default file. Existing files are left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := `# things2do configuration

# Cells along each axis. Coordinates are kept within [0, grid_size-1].
grid_size: 28

# How often tasks drift by their daily steps while a board is open.
tick_interval: 24h

storage:
  backend: json  # "json" (events file) or "sqlite"
  data_path: .things2do/events.json
  db_path: .things2do/things2do.db

web:
  port: "8000"
`
	return os.WriteFile(path, []byte(content), 0644)
}
