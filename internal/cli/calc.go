package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"eftb/internal/engine"
	"eftb/internal/units"
)

func parseFloats(args []string, names ...string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", engine.ErrInvalidParameter, names[i], s)
		}
		out[i] = v
	}
	return out, nil
}

func efficiencyFlags(cmd *cobra.Command, a *app, fuelType *string) {
	cmd.Flags().Float64VarP(&a.cfg.Efficiency, "efficiency", "e", a.cfg.Efficiency, "fuel efficiency")
	cmd.Flags().StringVar(fuelType, "fuel-type", "", "fuel grade (D1, D2, EU-40, SOF-40, SOF-80, EU-90); overrides --efficiency")
}

func newFuelCmd(a *app) *cobra.Command {
	var fuelType string
	cmd := &cobra.Command{
		Use:   "fuel <distance-ly> <mass-kg>",
		Short: "Fuel needed for a jump",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args, "distance", "mass")
			if err != nil {
				return err
			}
			eff, err := engine.ResolveEfficiency(a.cfg.Efficiency, fuelType)
			if err != nil {
				return err
			}
			fuel, err := engine.FuelRequired(units.FromLightYears(v[0]), v[1], eff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fuel required: %s\n", humanize.FormatFloat("#,###.##", fuel))
			return nil
		},
	}
	efficiencyFlags(cmd, a, &fuelType)
	return cmd
}

func newJumpCmd(a *app) *cobra.Command {
	var fuelType string
	cmd := &cobra.Command{
		Use:   "jump <mass-kg> <fuel>",
		Short: "How far a ship can jump",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args, "mass", "fuel")
			if err != nil {
				return err
			}
			eff, err := engine.ResolveEfficiency(a.cfg.Efficiency, fuelType)
			if err != nil {
				return err
			}
			d, err := engine.JumpRange(v[0], v[1], eff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Jump range: %.2f ly\n", d.LightYears())
			return nil
		},
	}
	efficiencyFlags(cmd, a, &fuelType)
	return cmd
}

func newFuelsCmd() *cobra.Command {
	var with string
	cmd := &cobra.Command{
		Use:   "fuels",
		Short: "List fuel grades and their efficiency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if with != "" {
				if _, err := units.FuelEfficiency(with); err != nil {
					return fmt.Errorf("%w: %v", engine.ErrInvalidParameter, err)
				}
			}
			for _, g := range units.FuelGrades() {
				if with != "" && !units.FuelCompatible(with, g.Name) {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %.2f\n", g.Name, g.Efficiency)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&with, "with", "", "only grades that can share a tank with this one")
	return cmd
}
