// Package config provides loading and environment overlay for sapling
// runtime configuration. It exposes a Default() baseline, file loading for
// JSON and YAML, and SAPLING_* environment overlays.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/sapling.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
