package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/catnav/internal/validation"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build and suite versions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "catnav %s (suite %s, %s)\n", version, validation.SuiteVersion, runtime.Version())
		return nil
	},
}
