package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"eftb/internal/engine"
	"eftb/internal/graph"
	"eftb/internal/units"
)

func newDistCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dist <start> <end>",
		Short: "Straight-line distance between two systems",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe()
			if err != nil {
				return err
			}
			d, err := engine.SystemDistance(u, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Distance between %s and %s is %.2f ly\n", args[0], args[1], d.LightYears())
			return nil
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	var (
		optimize    string
		playerGates bool
		timeout     float64
	)
	cmd := &cobra.Command{
		Use:   "path <start> <end>",
		Short: "Find the best route between two systems",
		Long: `Find the route that minimises fuel, distance or hops between two systems,
using fixed gates, jumps up to the given range and optionally player gates.

Examples:
  eftb path "E1J-M5G" "Y:3R7-7" -j 80
  eftb path A B -o hops --player-gates`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := engine.ParseOptimize(optimize)
			if err != nil {
				return err
			}
			limit, err := engine.TimeoutFromSeconds(timeout)
			if err != nil {
				return err
			}
			u, err := a.universe()
			if err != nil {
				return err
			}

			p, err := engine.FindPath(u, engine.PathQuery{
				Start:          args[0],
				End:            args[1],
				MaxJump:        units.FromLightYears(a.cfg.JumpLY),
				Optimize:       opt,
				UsePlayerGates: playerGates,
				Timeout:        limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path from %s to %s (%d steps, %d jumps, %.2f ly jumped):\n",
				args[0], args[1], len(p.Steps), p.Jumps(), p.JumpDistance().LightYears())
			for _, st := range p.Steps {
				fmt.Fprintf(out, "  %-12s %s -> %s (%.2f ly)\n", st.Kind, st.FromName, st.ToName, st.Distance.LightYears())
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&a.cfg.JumpLY, "jump", "j", a.cfg.JumpLY, "maximum jump distance in light-years")
	cmd.Flags().StringVarP(&optimize, "optimize", "o", "fuel", "fuel, distance or hops")
	cmd.Flags().BoolVar(&playerGates, "player-gates", false, "use player-built gates")
	cmd.Flags().Float64Var(&timeout, "timeout", a.cfg.Timeout.Seconds(), "search timeout in seconds (0 = none)")
	return cmd
}

func newExitsCmd(a *app) *cobra.Command {
	var playerGates bool
	cmd := &cobra.Command{
		Use:   "exits <start>",
		Short: "List jumps out of the start system's region",
		Long: `List every jump that leaves the start system's region from a system
reachable from the start through gates alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe()
			if err != nil {
				return err
			}
			exits, err := engine.FindExits(u, args[0], units.FromLightYears(a.cfg.JumpLY), playerGates)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(exits) == 0 {
				fmt.Fprintln(out, "No exits in range")
				return nil
			}
			targets := make([]graph.SystemID, 0, len(exits))
			for _, e := range exits {
				fmt.Fprintf(out, "%s -> %s (%.2f ly)\n", e.FromName, e.ToName, e.Distance.LightYears())
				targets = append(targets, e.To)
			}
			fmt.Fprintf(out, "%d exits into %d regions\n", len(exits), len(u.RegionsOf(targets)))
			return nil
		},
	}
	cmd.Flags().Float64VarP(&a.cfg.JumpLY, "jump", "j", a.cfg.JumpLY, "maximum jump distance in light-years")
	cmd.Flags().BoolVar(&playerGates, "player-gates", false, "follow player-built gates")
	return cmd
}
