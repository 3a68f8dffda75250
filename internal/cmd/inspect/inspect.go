package inspect

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/kiprasmel/sapling/internal/config"
	"github.com/kiprasmel/sapling/internal/runtime"
	"github.com/kiprasmel/sapling/pkg/log"
)

// loadConfig builds the effective config from the given file (optional),
// environment overlays, and command flags.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func openRuntime(cmd *cobra.Command, logger log.Logger) (*runtime.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	mode, err := cfg.FsyncMode()
	if err != nil {
		return nil, err
	}
	return runtime.Open(runtime.Options{DataDir: cfg.DataDir, Fsync: mode, Config: cfg, Logger: logger})
}

func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	cmd.Flags().String("config", "", "Config file path (JSON or YAML)")
}

// NewCheckCommand returns the storage health check command.
func NewCheckCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check local storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, logger)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.CheckHealth(cmd.Context()); err != nil {
				return fmt.Errorf("storage check failed: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}
	addStorageFlags(cmd)
	return cmd
}
