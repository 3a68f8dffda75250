package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SAPLING_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SAPLING_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SAPLING_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("SAPLING_DEFAULT_REPO_NAME"); v != "" {
		cfg.DefaultRepoName = v
	}
	if v := os.Getenv("SAPLING_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SAPLING_AUX_MAX_SEGMENT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Aux.MaxSegmentCount = n
		}
	}
	if v := os.Getenv("SAPLING_AUX_MAX_BYTES_PER_SEGMENT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Aux.MaxBytesPerSegment = n
		}
	}
	if v := os.Getenv("SAPLING_AUX_AUTO_SYNC_THRESHOLD"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Aux.AutoSyncThreshold = n
		}
	}
	if v := os.Getenv("SAPLING_AUX_TOTAL_BYTES_BUDGET"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Aux.TotalBytesBudget = n
		}
	}
}
