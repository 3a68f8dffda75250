package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kiprasmel/sapling/internal/cmd/inspect"
	logpkg "github.com/kiprasmel/sapling/pkg/log"
)

func main() {
	// Respect SAPLING_LOG_LEVEL for all CLI output
	level := os.Getenv("SAPLING_LOG_LEVEL")
	parsed, parseErr := logpkg.ParseLevel(level)
	if parseErr != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	if parseErr != nil && level != "" {
		logger.Warn("ignoring invalid SAPLING_LOG_LEVEL", logpkg.Str("value", level), logpkg.Err(parseErr))
	}

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "sapling",
		Short: "Sapling storage CLI",
		Long:  "Sapling manages changeset storage: a content-addressed blob store, a changeset graph index, and file metadata logs. This CLI inspects and checks local storage.",
	}

	rootCmd.AddCommand(inspect.NewCheckCommand(logger))
	rootCmd.AddCommand(inspect.NewAuxCommand(logger))
	rootCmd.AddCommand(inspect.NewChangesetCommand(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
