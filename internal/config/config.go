// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"

	"github.com/okian/racebet/internal/domain/model"
)

// Store drivers understood by the repository factory.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// StoreConfig selects and locates the race history backend.
type StoreConfig struct {
	// Driver is "csv" or "sqlite".
	Driver string `koanf:"driver" validate:"required,oneof=csv sqlite"`

	// Path is the CSV file or SQLite database path.
	Path string `koanf:"path" validate:"required"`
}

// CompetitorConfig is one registry entry as it appears in YAML.
type CompetitorConfig struct {
	ID   int    `koanf:"id" validate:"min=1"`
	Name string `koanf:"name" validate:"required"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the pending append jobs.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// DedupeSize caps the remembered submission ids. Zero or less is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	Store StoreConfig `koanf:"store"`

	// Competitors is the ordered registry. The first entry is the fallback bet.
	Competitors []CompetitorConfig `koanf:"competitors" validate:"len=4,dive"`
}

// New creates a Config with defaults.
func New() *Config {
	reg := model.DefaultRegistry()
	competitors := make([]CompetitorConfig, 0, reg.Len())
	for _, c := range reg.Competitors() {
		competitors = append(competitors, CompetitorConfig{ID: int(c.ID), Name: c.Name})
	}
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Addr:       ":9080",
		QueueSize:  1_024,
		DedupeSize: 10_000,
		Store: StoreConfig{
			Driver: DriverCSV,
			Path:   "race_results.csv",
		},
		Competitors: competitors,
	}
}

// Registry builds the competitor registry described by the config.
func (c *Config) Registry() (model.Registry, error) {
	competitors := make([]model.Competitor, 0, len(c.Competitors))
	for _, cc := range c.Competitors {
		competitors = append(competitors, model.Competitor{ID: model.CompetitorID(cc.ID), Name: cc.Name})
	}
	reg, err := model.NewRegistry(competitors)
	if err != nil {
		return model.Registry{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return reg, nil
}
