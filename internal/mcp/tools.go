// Package mcp exposes route queries as MCP tools for assistant clients.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"eftb/internal/config"
	"eftb/internal/engine"
	"eftb/internal/graph"
	"eftb/internal/units"
)

// NewServer returns an MCP server with every query tool registered.
func NewServer(version string, u *graph.Universe, cfg *config.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"eftb",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterTools(s, u, cfg)
	return s
}

// RegisterTools adds the route and calculator tools to s.
func RegisterTools(s *server.MCPServer, u *graph.Universe, cfg *config.Config) {
	s.AddTool(pathTool(cfg), pathHandler(u, cfg))
	s.AddTool(exitsTool(cfg), exitsHandler(u, cfg))
	s.AddTool(distanceTool(), distanceHandler(u))
	s.AddTool(fuelTool(cfg), fuelHandler(cfg))
	s.AddTool(jumpRangeTool(cfg), jumpRangeHandler(cfg))
}

// --- path ---

func pathTool(cfg *config.Config) mcp.Tool {
	return mcp.NewTool("path",
		mcp.WithDescription("Find the best route between two solar systems using gates and jumps."),
		mcp.WithString("start", mcp.Description("Start system name"), mcp.Required()),
		mcp.WithString("end", mcp.Description("Destination system name"), mcp.Required()),
		mcp.WithNumber("jump", mcp.Description("Maximum jump distance in light-years"), mcp.DefaultNumber(cfg.JumpLY)),
		mcp.WithString("optimize",
			mcp.Description("What to minimise: fuel, distance or hops"),
			mcp.Enum("fuel", "distance", "hops"),
			mcp.DefaultString("fuel"),
		),
		mcp.WithBoolean("use_smart_gates", mcp.Description("Allow player-built gates"), mcp.DefaultBool(false)),
	)
}

func pathHandler(u *graph.Universe, cfg *config.Config) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := req.RequireString("start")
		if err != nil {
			return toolError(err)
		}
		end, err := req.RequireString("end")
		if err != nil {
			return toolError(err)
		}
		opt, err := engine.ParseOptimize(req.GetString("optimize", "fuel"))
		if err != nil {
			return toolError(err)
		}

		p, err := engine.FindPath(u, engine.PathQuery{
			Start:          start,
			End:            end,
			MaxJump:        units.FromLightYears(req.GetFloat("jump", cfg.JumpLY)),
			Optimize:       opt,
			UsePlayerGates: req.GetBool("use_smart_gates", false),
			Timeout:        cfg.Timeout,
		})
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d steps, %d jumps, %.2f ly jumped, %.2f ly total (cost %.2f)\n",
			len(p.Steps), p.Jumps(), p.JumpDistance().LightYears(), p.TotalDistance().LightYears(), p.Cost)
		for i, st := range p.Steps {
			fmt.Fprintf(&sb, "%d. %s -> %s  %s  %.2f ly\n", i+1, st.FromName, st.ToName, st.Kind, st.Distance.LightYears())
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- exits ---

func exitsTool(cfg *config.Config) mcp.Tool {
	return mcp.NewTool("exits",
		mcp.WithDescription("List jumps out of the start system's region that are reachable through gates only."),
		mcp.WithString("start", mcp.Description("Start system name"), mcp.Required()),
		mcp.WithNumber("jump", mcp.Description("Maximum jump distance in light-years"), mcp.DefaultNumber(cfg.JumpLY)),
		mcp.WithBoolean("use_smart_gates", mcp.Description("Follow player-built gates too"), mcp.DefaultBool(false)),
	)
}

func exitsHandler(u *graph.Universe, cfg *config.Config) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := req.RequireString("start")
		if err != nil {
			return toolError(err)
		}
		exits, err := engine.FindExits(u, start,
			units.FromLightYears(req.GetFloat("jump", cfg.JumpLY)), req.GetBool("use_smart_gates", false))
		if err != nil {
			return toolError(err)
		}
		if len(exits) == 0 {
			return mcp.NewToolResultText("No exits in range."), nil
		}

		var sb strings.Builder
		targets := make([]graph.SystemID, 0, len(exits))
		for _, e := range exits {
			fmt.Fprintf(&sb, "%s -> %s  %.2f ly  region %d\n", e.FromName, e.ToName, e.Distance.LightYears(), e.ToRegion)
			targets = append(targets, e.To)
		}
		fmt.Fprintf(&sb, "%d exits into %d regions\n", len(exits), len(u.RegionsOf(targets)))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- distance ---

func distanceTool() mcp.Tool {
	return mcp.NewTool("distance",
		mcp.WithDescription("Straight-line distance between two solar systems in light-years."),
		mcp.WithString("start", mcp.Required()),
		mcp.WithString("end", mcp.Required()),
	)
}

func distanceHandler(u *graph.Universe) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := req.RequireString("start")
		if err != nil {
			return toolError(err)
		}
		end, err := req.RequireString("end")
		if err != nil {
			return toolError(err)
		}
		d, err := engine.SystemDistance(u, start, end)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%.2f ly", d.LightYears())), nil
	}
}

// --- fuel ---

func fuelTool(cfg *config.Config) mcp.Tool {
	return mcp.NewTool("fuel",
		mcp.WithDescription("Fuel units a ship burns for a jump."),
		mcp.WithNumber("distance", mcp.Description("Jump distance in light-years"), mcp.Required()),
		mcp.WithNumber("mass", mcp.Description("Ship mass in kg"), mcp.Required()),
		mcp.WithNumber("efficiency", mcp.Description("Fuel efficiency"), mcp.DefaultNumber(cfg.Efficiency)),
		mcp.WithString("fuel_type", mcp.Description("Fuel grade name (D1, D2, EU-40, SOF-40, SOF-80, EU-90); overrides efficiency")),
	)
}

func fuelHandler(cfg *config.Config) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dist, err := req.RequireFloat("distance")
		if err != nil {
			return toolError(err)
		}
		mass, err := req.RequireFloat("mass")
		if err != nil {
			return toolError(err)
		}
		eff, err := engine.ResolveEfficiency(req.GetFloat("efficiency", cfg.Efficiency), req.GetString("fuel_type", ""))
		if err != nil {
			return toolError(err)
		}
		fuel, err := engine.FuelRequired(units.FromLightYears(dist), mass, eff)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%.2f fuel", fuel)), nil
	}
}

// --- jump_range ---

func jumpRangeTool(cfg *config.Config) mcp.Tool {
	return mcp.NewTool("jump_range",
		mcp.WithDescription("How far a ship can jump with the given fuel."),
		mcp.WithNumber("mass", mcp.Description("Ship mass in kg"), mcp.Required()),
		mcp.WithNumber("fuel", mcp.Description("Fuel units in the tank"), mcp.Required()),
		mcp.WithNumber("efficiency", mcp.Description("Fuel efficiency"), mcp.DefaultNumber(cfg.Efficiency)),
		mcp.WithString("fuel_type", mcp.Description("Fuel grade name; overrides efficiency")),
	)
}

func jumpRangeHandler(cfg *config.Config) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mass, err := req.RequireFloat("mass")
		if err != nil {
			return toolError(err)
		}
		fuel, err := req.RequireFloat("fuel")
		if err != nil {
			return toolError(err)
		}
		eff, err := engine.ResolveEfficiency(req.GetFloat("efficiency", cfg.Efficiency), req.GetString("fuel_type", ""))
		if err != nil {
			return toolError(err)
		}
		d, err := engine.JumpRange(mass, fuel, eff)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%.2f ly", d.LightYears())), nil
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
