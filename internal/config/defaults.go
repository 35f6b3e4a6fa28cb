package config

import (
	"os"
	"strconv"
)

// Default values for optional configuration fields.
const (
	DefaultDataRaw          = "data/raw.pgn.zst"
	DefaultDataPlayers      = "data/players.txt"
	DefaultDataGames        = "data/games.pgn"
	DefaultTargetSize       = 1000
	DefaultTargetGPP        = 10
	DefaultWindowSize       = 65536
	DefaultRecordCapacity   = 32768
	DefaultCriterion        = "rapid-eval"
	DefaultLoggingFrequency = 100000
	DefaultWorkers          = 1
)

// Environment variable names.
const (
	EnvDataRaw = "PGNSCAN_DATA_RAW"
	EnvWorkers = "PGNSCAN_WORKERS"
)

// DefaultConfig returns a configuration with every optional field set.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataRaw:     DefaultDataRaw,
			DataPlayers: DefaultDataPlayers,
			DataGames:   DefaultDataGames,
		},
		TargetSize: DefaultTargetSize,
		TargetGPP:  DefaultTargetGPP,
		Scanner: ScannerConfig{
			WindowSize:     DefaultWindowSize,
			RecordCapacity: DefaultRecordCapacity,
		},
		Search: SearchConfig{
			Criterion:        DefaultCriterion,
			LoggingFrequency: DefaultLoggingFrequency,
			Workers:          DefaultWorkers,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if path := os.Getenv(EnvDataRaw); path != "" {
		c.Paths.DataRaw = path
	}
	// Non-numeric values are ignored.
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.Workers = n
		}
	}
}
