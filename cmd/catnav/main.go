package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/catnav/internal/config"
	"github.com/danielpatrickdp/catnav/internal/logging"
)

// #region root
var (
	configPath string
	logLevel   string

	cfg    config.File
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "catnav",
	Short: "Categorical-coordinate navigation and synchronization engine",
	Long: `catnav runs oscillator-driven trajectories through the entropy cube,
validates the numerical building blocks and inspects persisted runs.

Configuration is read from --config (YAML) over the built-in defaults, then
CATNAV_* environment variables. A .env file in the working directory is
loaded first when present.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	cfg = loaded
	logger = logging.Setup(cfg.Log.Level)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

// #endregion root

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
