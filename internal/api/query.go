package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"eftb/internal/engine"
	"eftb/internal/graph"
	"eftb/internal/logger"
	"eftb/internal/units"
)

// Envelope versions. Path steps changed shape once. Exits keep the version 1
// tuple shape unless the caller asks for details.
const (
	versionV1         = 1
	versionPath       = 2
	versionExitDetail = 2
)

type webStar struct {
	ID   graph.SystemID `json:"id"`
	Name string         `json:"name"`
}

type webPathStep struct {
	From     webStar `json:"from"`
	ConnType string  `json:"conn_type"`
	Distance float64 `json:"distance"` // light-years
	To       webStar `json:"to"`
}

type webExit struct {
	From     webStar        `json:"from"`
	To       webStar        `json:"to"`
	ToRegion graph.RegionID `json:"to_region"`
	Distance float64        `json:"distance"` // light-years
}

type webFuel struct {
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
}

// connType returns the link kind names the web client understands.
func connType(k graph.LinkKind) string {
	switch k {
	case graph.FixedGate:
		return "npc_gate"
	case graph.PlayerGate:
		return "smart_gate"
	}
	return k.String()
}

// statusFor maps query errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNotFound), errors.Is(err, engine.ErrNoPath):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// queryFunc computes one query. u is nil for queries that do not need the
// star map.
type queryFunc func(ctx context.Context, u *graph.Universe) (version int, data any, err error)

// serveQuery runs fn inside a span, records metrics and writes the envelope
// or the mapped error.
func (s *Server) serveQuery(w http.ResponseWriter, r *http.Request, kind string, needsUniverse bool, fn queryFunc) {
	var u *graph.Universe
	if needsUniverse {
		if u = s.loaded(); u == nil {
			writeError(w, http.StatusServiceUnavailable, "star map is still loading")
			return
		}
	}

	ctx, span := s.tracer.Start(r.Context(), "eftb."+kind)
	defer span.End()
	span.SetAttributes(
		attribute.String("eftb.query", kind),
		attribute.String("http.request_id", r.Header.Get("X-Request-ID")),
	)

	start := time.Now()
	version, data, err := fn(ctx, u)
	s.metrics.observe(kind, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			logger.Error("API", fmt.Sprintf("%s [%s]: %v", kind, r.Header.Get("X-Request-ID"), err))
		}
		writeError(w, code, err.Error())
		return
	}
	writeJSON(w, envelope{Version: version, Data: data})
}

// floatParam parses a query parameter; missing values yield def, or an
// error when def is NaN.
func floatParam(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		if math.IsNaN(def) {
			return 0, fmt.Errorf("%w: missing %s", engine.ErrInvalidParameter, name)
		}
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%q", engine.ErrInvalidParameter, name, v)
	}
	return f, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", engine.ErrInvalidParameter, name, v)
	}
	return b, nil
}

func stringParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: missing %s", engine.ErrInvalidParameter, name)
	}
	return v, nil
}

// efficiencyParam reads efficiency or fuel_type, falling back to the
// configured default.
func (s *Server) efficiencyParam(r *http.Request) (float64, error) {
	eff, err := floatParam(r, "efficiency", s.cfg.Efficiency)
	if err != nil {
		return 0, err
	}
	return engine.ResolveEfficiency(eff, r.URL.Query().Get("fuel_type"))
}

func (s *Server) handleDist(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, "dist", true, func(ctx context.Context, u *graph.Universe) (int, any, error) {
		a, err := stringParam(r, "start")
		if err != nil {
			return 0, nil, err
		}
		b, err := stringParam(r, "end")
		if err != nil {
			return 0, nil, err
		}
		d, err := engine.SystemDistance(u, a, b)
		if err != nil {
			return 0, nil, err
		}
		return versionV1, d.LightYears(), nil
	})
}

// pathKey identifies identical path queries for request coalescing.
func pathKey(q engine.PathQuery) string {
	return fmt.Sprintf("%s\x00%s\x00%g\x00%d\x00%t\x00%d",
		q.Start, q.End, float64(q.MaxJump), q.Optimize, q.UsePlayerGates, q.Timeout)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, "path", true, func(ctx context.Context, u *graph.Universe) (int, any, error) {
		q, err := s.pathQuery(r)
		if err != nil {
			return 0, nil, err
		}

		v, err, shared := s.paths.Do(pathKey(q), func() (interface{}, error) {
			return engine.FindPath(u, q)
		})
		if err != nil {
			return 0, nil, err
		}
		p := v.(*engine.Path)
		if !shared {
			s.metrics.observeExpanded(p.Expanded)
		}

		steps := make([]webPathStep, 0, len(p.Steps))
		for _, st := range p.Steps {
			steps = append(steps, webPathStep{
				From:     webStar{ID: st.From, Name: st.FromName},
				ConnType: connType(st.Kind),
				Distance: st.Distance.LightYears(),
				To:       webStar{ID: st.To, Name: st.ToName},
			})
		}
		return versionPath, steps, nil
	})
}

func (s *Server) pathQuery(r *http.Request) (engine.PathQuery, error) {
	var q engine.PathQuery
	var err error
	if q.Start, err = stringParam(r, "start"); err != nil {
		return q, err
	}
	if q.End, err = stringParam(r, "end"); err != nil {
		return q, err
	}
	jump, err := floatParam(r, "jump", s.cfg.JumpLY)
	if err != nil {
		return q, err
	}
	q.MaxJump = units.FromLightYears(jump)

	opt := r.URL.Query().Get("optimize")
	if opt == "" {
		opt = engine.OptimizeFuel.String()
	}
	if q.Optimize, err = engine.ParseOptimize(opt); err != nil {
		return q, err
	}
	if q.UsePlayerGates, err = boolParam(r, "use_smart_gates"); err != nil {
		return q, err
	}
	timeout, err := floatParam(r, "timeout", s.cfg.Timeout.Seconds())
	if err != nil {
		return q, err
	}
	if q.Timeout, err = engine.TimeoutFromSeconds(timeout); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, "exit", true, func(ctx context.Context, u *graph.Universe) (int, any, error) {
		start, err := stringParam(r, "start")
		if err != nil {
			return 0, nil, err
		}
		jump, err := floatParam(r, "jump", s.cfg.JumpLY)
		if err != nil {
			return 0, nil, err
		}
		gates, err := boolParam(r, "use_smart_gates")
		if err != nil {
			return 0, nil, err
		}
		detail, err := boolParam(r, "detail")
		if err != nil {
			return 0, nil, err
		}

		exits, err := engine.FindExits(u, start, units.FromLightYears(jump), gates)
		if err != nil {
			return 0, nil, err
		}
		if !detail {
			// [from_name, to_name, distance_ly]
			tuples := make([][3]any, 0, len(exits))
			for _, e := range exits {
				tuples = append(tuples, [3]any{e.FromName, e.ToName, e.Distance.LightYears()})
			}
			return versionV1, tuples, nil
		}
		out := make([]webExit, 0, len(exits))
		for _, e := range exits {
			out = append(out, webExit{
				From:     webStar{ID: e.From, Name: e.FromName},
				To:       webStar{ID: e.To, Name: e.ToName},
				ToRegion: e.ToRegion,
				Distance: e.Distance.LightYears(),
			})
		}
		return versionExitDetail, out, nil
	})
}

func (s *Server) handleFuel(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, "fuel", false, func(ctx context.Context, _ *graph.Universe) (int, any, error) {
		dist, err := floatParam(r, "dist", math.NaN())
		if err != nil {
			return 0, nil, err
		}
		mass, err := floatParam(r, "mass", math.NaN())
		if err != nil {
			return 0, nil, err
		}
		eff, err := s.efficiencyParam(r)
		if err != nil {
			return 0, nil, err
		}
		fuel, err := engine.FuelRequired(units.FromLightYears(dist), mass, eff)
		if err != nil {
			return 0, nil, err
		}
		return versionV1, fuel, nil
	})
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, "jump", false, func(ctx context.Context, _ *graph.Universe) (int, any, error) {
		mass, err := floatParam(r, "mass", math.NaN())
		if err != nil {
			return 0, nil, err
		}
		fuel, err := floatParam(r, "fuel", math.NaN())
		if err != nil {
			return 0, nil, err
		}
		eff, err := s.efficiencyParam(r)
		if err != nil {
			return 0, nil, err
		}
		d, err := engine.JumpRange(mass, fuel, eff)
		if err != nil {
			return 0, nil, err
		}
		return versionV1, d.LightYears(), nil
	})
}

// handleFuels lists fuel grades, optionally only those that can share a
// tank with ?compatible_with=.
func (s *Server) handleFuels(w http.ResponseWriter, r *http.Request) {
	with := r.URL.Query().Get("compatible_with")
	if with != "" {
		if _, err := units.FuelEfficiency(with); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	grades := units.FuelGrades()
	out := make([]webFuel, 0, len(grades))
	for _, g := range grades {
		if with != "" && !units.FuelCompatible(with, g.Name) {
			continue
		}
		out = append(out, webFuel{Name: g.Name, Efficiency: g.Efficiency})
	}
	writeJSON(w, envelope{Version: versionV1, Data: out})
}
