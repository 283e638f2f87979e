// Package cli is the eftb command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"eftb/internal/config"
	"eftb/internal/graph"
	"eftb/internal/logger"
	"eftb/internal/sde"
)

// app carries state shared by every subcommand.
type app struct {
	cfg     *config.Config
	cfgErr  error
	version string
}

// universe loads the snapshot from the configured data directory.
func (a *app) universe() (*graph.Universe, error) {
	return sde.LoadUniverse(a.cfg.DataDir)
}

// NewRootCmd builds the command tree. Flag defaults come from the
// environment (see config.FromEnv).
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}
	a.cfg, a.cfgErr = config.FromEnv()
	if a.cfgErr != nil {
		a.cfg = config.Default()
	}

	root := &cobra.Command{
		Use:   "eftb",
		Short: "Route and exit finder for the star map",
		Long: `eftb finds routes between solar systems over gates and jumps,
lists jump exits out of a region and runs fuel calculations.

Build the snapshot once with "eftb build", then query it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.cfgErr
		},
	}
	root.PersistentFlags().StringVarP(&a.cfg.DataDir, "data", "d", a.cfg.DataDir, "data directory holding the snapshot")

	root.AddCommand(
		newBuildCmd(a),
		newDistCmd(a),
		newPathCmd(a),
		newExitsCmd(a),
		newFuelCmd(a),
		newJumpCmd(a),
		newFuelsCmd(),
		newServeCmd(a),
		newMCPCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		logger.Error("eftb", err.Error())
		os.Exit(1)
	}
}
