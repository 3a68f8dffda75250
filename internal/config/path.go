package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir picks the platform's conventional data directory, probing
// from most to least specific and settling on a dotdir in the user's home
// when nothing else applies.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// XDG takes priority on Linux when set
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "sapling")
	}

	// system-wide Unix location
	if isDir("/var/lib") {
		return "/var/lib/sapling"
	}

	// macOS application support
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "Sapling")
	}

	// Windows local app data
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "Sapling")
	}

	return filepath.Join(homeDir, ".sapling")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
