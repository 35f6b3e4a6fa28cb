// Package config provides the pipeline configuration for pgn-scan.
//
// Configuration is read from a YAML file over DefaultConfig, adjusted from
// the environment, and validated. Command-line flags override the result.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/pgn-scan/internal/errors"
)

// Config holds all pipeline configuration.
type Config struct {
	Paths PathsConfig `yaml:"paths"`

	// TargetSize is the number of players the player search stops at.
	TargetSize int `yaml:"target_size"`

	// TargetGPP is the number of games wanted per player.
	TargetGPP int `yaml:"target_gpp"`

	// MaxGames bounds how many records are read from an input (0 = all).
	MaxGames int `yaml:"max_games"`

	Scanner   ScannerConfig   `yaml:"scanner"`
	Search    SearchConfig    `yaml:"search"`
	Duplicate DuplicateConfig `yaml:"duplicate"`
}

// PathsConfig names the pipeline's input and output files.
type PathsConfig struct {
	DataRaw     string `yaml:"data_raw"`     // raw (usually .zst) game dump
	DataPlayers string `yaml:"data_players"` // player list written by "players"
	DataGames   string `yaml:"data_games"`   // selected games written by "games"
}

// ScannerConfig sizes the record scanner.
type ScannerConfig struct {
	WindowSize       int  `yaml:"window_size"`
	RecordCapacity   int  `yaml:"record_capacity"`
	ReportIncomplete bool `yaml:"report_incomplete"`
}

// SearchConfig controls player search and game selection.
type SearchConfig struct {
	// Criterion names the game criterion, see search.CriterionByName.
	Criterion string `yaml:"criterion"`

	// LoggingFrequency logs progress every N records (0 = never).
	LoggingFrequency int `yaml:"logging_frequency"`

	// Workers evaluating the criterion in parallel (1 = sequential).
	Workers int `yaml:"workers"`
}

// DuplicateConfig controls duplicate record suppression.
type DuplicateConfig struct {
	Suppress bool `yaml:"suppress"`

	// MaxCapacity bounds the number of remembered records (0 = unlimited).
	MaxCapacity int `yaml:"max_capacity"`
}

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns the validated defaults when path is
// empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}
	return Load(ctx, path)
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	if cfg.TargetSize < 1 {
		return invalid("target_size: must be at least 1, got %d", cfg.TargetSize)
	}
	if cfg.TargetGPP < 1 {
		return invalid("target_gpp: must be at least 1, got %d", cfg.TargetGPP)
	}
	if cfg.MaxGames < 0 {
		return invalid("max_games: must not be negative, got %d", cfg.MaxGames)
	}
	if cfg.Scanner.WindowSize < 1 {
		return invalid("scanner.window_size: must be at least 1, got %d", cfg.Scanner.WindowSize)
	}
	if cfg.Scanner.RecordCapacity < 1 {
		return invalid("scanner.record_capacity: must be at least 1, got %d", cfg.Scanner.RecordCapacity)
	}
	if cfg.Search.Criterion == "" {
		return invalid("search.criterion: is required")
	}
	if cfg.Search.LoggingFrequency < 0 {
		return invalid("search.logging_frequency: must not be negative, got %d", cfg.Search.LoggingFrequency)
	}
	if cfg.Search.Workers < 1 {
		return invalid("search.workers: must be at least 1, got %d", cfg.Search.Workers)
	}
	if cfg.Duplicate.MaxCapacity < 0 {
		return invalid("duplicate.max_capacity: must not be negative, got %d", cfg.Duplicate.MaxCapacity)
	}
	return nil
}

// invalid builds an ErrInvalidConfig error with a field message.
func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrInvalidConfig, format, args...)
}
