package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kiprasmel/sapling/internal/logstore"
	pebblestore "github.com/kiprasmel/sapling/internal/storage/pebble"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DataDir         string      `json:"dataDir" yaml:"dataDir"`
	Fsync           string      `json:"fsync" yaml:"fsync"`
	DefaultRepoName string      `json:"defaultRepoName" yaml:"defaultRepoName"`
	LogLevel        string      `json:"logLevel" yaml:"logLevel"`
	Aux             AuxDefaults `json:"aux" yaml:"aux"`
}

// AuxDefaults captures the metadata log store tuning knobs. Zero values fall
// back to the store's built-in defaults.
type AuxDefaults struct {
	MaxSegmentCount    int   `json:"maxSegmentCount" yaml:"maxSegmentCount"`
	MaxBytesPerSegment int64 `json:"maxBytesPerSegment" yaml:"maxBytesPerSegment"`
	AutoSyncThreshold  int64 `json:"autoSyncThreshold" yaml:"autoSyncThreshold"`
	// TotalBytesBudget caps the whole store; it is divided evenly across the
	// retained segments when MaxBytesPerSegment is unset.
	TotalBytesBudget int64 `json:"totalBytesBudget" yaml:"totalBytesBudget"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		Fsync:           "always",
		DefaultRepoName: "main",
		LogLevel:        "info",
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// FsyncMode maps the configured fsync string onto the storage layer's mode.
func (c Config) FsyncMode() (pebblestore.FsyncMode, error) {
	switch c.Fsync {
	case "", "always":
		return pebblestore.FsyncModeAlways, nil
	case "never":
		return pebblestore.FsyncModeNever, nil
	default:
		return pebblestore.FsyncModeUnspecified, fmt.Errorf("config: unknown fsync mode %q", c.Fsync)
	}
}

// AuxOptions converts the aux tuning knobs into log store options. When only
// a total byte budget is given, the per-segment threshold is the budget
// divided across the retained segment count.
func (c Config) AuxOptions() logstore.Options {
	opts := logstore.Options{
		MaxSegmentCount:    c.Aux.MaxSegmentCount,
		MaxBytesPerSegment: c.Aux.MaxBytesPerSegment,
		AutoSyncThreshold:  c.Aux.AutoSyncThreshold,
	}
	if opts.MaxBytesPerSegment == 0 && c.Aux.TotalBytesBudget > 0 {
		count := opts.MaxSegmentCount
		if count == 0 {
			count = logstore.DefaultMaxSegmentCount
		}
		opts.MaxBytesPerSegment = c.Aux.TotalBytesBudget / int64(count)
	}
	return opts
}
