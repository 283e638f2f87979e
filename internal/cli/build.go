package cli

import (
	"github.com/spf13/cobra"

	"eftb/internal/sde"
	"eftb/internal/units"
)

func newBuildCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the star map snapshot from the raw data",
		Long: `Build reads starmap.json, smartgates.json and solarsystems.json from
<data>/raw (downloading the raw bundle first when a raw URL is configured),
generates gate and jump links and writes the snapshot and names file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sde.BuildSnapshot(cmd.Context(), a.cfg.DataDir, a.cfg.RawURL, sde.BuildOptions{
				MaxJump: units.FromLightYears(a.cfg.BuildMaxLY),
				Workers: workers,
			})
		},
	}
	cmd.Flags().Float64Var(&a.cfg.BuildMaxLY, "max-jump", a.cfg.BuildMaxLY, "longest jump link to generate, in light-years")
	cmd.Flags().StringVar(&a.cfg.RawURL, "raw-url", a.cfg.RawURL, "URL of the raw data bundle (zip)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel jump builders (0 = GOMAXPROCS)")
	return cmd
}
