package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eftb/internal/config"
	"eftb/internal/graph/graphtest"
)

func newTestServer(t *testing.T, loaded bool) http.Handler {
	t.Helper()
	srv := NewServer(config.Default(), "test", nil)
	if loaded {
		srv.SetUniverse(graphtest.Diamond())
	}
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type rawEnvelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) rawEnvelope {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var env rawEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHandleStatus(t *testing.T) {
	for _, loaded := range []bool{false, true} {
		rec := get(t, newTestServer(t, loaded), "/api/status")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var out struct {
			Ready   bool   `json:"ready"`
			Systems int    `json:"systems"`
			Version string `json:"version"`
		}
		json.NewDecoder(rec.Body).Decode(&out)
		if out.Ready != loaded {
			t.Errorf("ready = %v, want %v", out.Ready, loaded)
		}
		if loaded && out.Systems != 4 {
			t.Errorf("systems = %d, want 4", out.Systems)
		}
		if out.Version != "test" {
			t.Errorf("version = %q", out.Version)
		}
	}
}

func TestQueriesNotReady(t *testing.T) {
	h := newTestServer(t, false)
	for _, url := range []string{
		"/api/stars",
		"/api/dist?start=Alpha&end=Bravo",
		"/api/path?start=Alpha&end=Charlie",
		"/api/exit?start=Alpha",
	} {
		if rec := get(t, h, url); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want 503", url, rec.Code)
		}
	}
	// Calculators do not need the star map.
	if rec := get(t, h, "/api/jump?mass=28000000&fuel=112&efficiency=0.5"); rec.Code != http.StatusOK {
		t.Errorf("GET /api/jump status = %d, want 200", rec.Code)
	}
}

func TestHandleStars(t *testing.T) {
	env := decodeEnvelope(t, get(t, newTestServer(t, true), "/api/stars"))
	var names []string
	json.Unmarshal(env.Data, &names)
	want := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("stars = %v, want %v", names, want)
	}
}

func TestHandleAutocomplete(t *testing.T) {
	h := newTestServer(t, true)
	rec := get(t, h, "/api/systems/autocomplete?q=ha")
	var out map[string][]string
	json.NewDecoder(rec.Body).Decode(&out)
	// "Charlie" and "Alpha" both contain "ha"; neither starts with it.
	if got := out["systems"]; len(got) != 2 {
		t.Errorf("systems = %v, want 2 matches", got)
	}

	rec = get(t, h, "/api/systems/autocomplete?q=del")
	json.NewDecoder(rec.Body).Decode(&out)
	if got := out["systems"]; len(got) != 1 || got[0] != "Delta" {
		t.Errorf("systems = %v, want [Delta]", got)
	}

	// Prefix matches rank ahead of substring matches.
	rec = get(t, h, "/api/systems/autocomplete?q=A")
	json.NewDecoder(rec.Body).Decode(&out)
	if got := out["systems"]; len(got) != 4 || got[0] != "Alpha" {
		t.Errorf("systems = %v, want Alpha first of 4", got)
	}
}

func TestHandleDist(t *testing.T) {
	env := decodeEnvelope(t, get(t, newTestServer(t, true), "/api/dist?start=alpha&end=Charlie"))
	var d float64
	json.Unmarshal(env.Data, &d)
	if env.Version != 1 || math.Abs(d-20) > 1e-9 {
		t.Errorf("dist = v%d %v, want v1 20", env.Version, d)
	}
}

func TestHandlePath(t *testing.T) {
	h := newTestServer(t, true)

	env := decodeEnvelope(t, get(t, h, "/api/path?start=Alpha&end=Charlie&jump=25&optimize=fuel&use_smart_gates=true"))
	if env.Version != 2 {
		t.Errorf("version = %d, want 2", env.Version)
	}
	var steps []webPathStep
	if err := json.Unmarshal(env.Data, &steps); err != nil {
		t.Fatalf("decode steps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("steps = %+v, want 2", steps)
	}
	if steps[0].ConnType != "npc_gate" || steps[0].From.Name != "Alpha" || steps[0].To.Name != "Delta" {
		t.Errorf("step 0 = %+v", steps[0])
	}
	if steps[1].ConnType != "smart_gate" || steps[1].To.Name != "Charlie" {
		t.Errorf("step 1 = %+v", steps[1])
	}

	env = decodeEnvelope(t, get(t, h, "/api/path?start=Alpha&end=Charlie&jump=25&optimize=fuel"))
	steps = nil
	json.Unmarshal(env.Data, &steps)
	total := 0.0
	for _, st := range steps {
		if st.ConnType != "jump" {
			t.Errorf("without smart gates step %+v, want jumps only", st)
		}
		total += st.Distance
	}
	if math.Abs(total-20) > 1e-9 {
		t.Errorf("without smart gates total = %v ly, want 20", total)
	}
}

func TestHandlePath_Errors(t *testing.T) {
	h := newTestServer(t, true)
	tests := []struct {
		url  string
		want int
	}{
		{"/api/path?start=Nowhere&end=Charlie", http.StatusNotFound},
		{"/api/path?start=Bravo&end=Charlie&jump=0", http.StatusNotFound},
		{"/api/path?start=Alpha&end=Charlie&optimize=speed", http.StatusBadRequest},
		{"/api/path?start=Alpha&end=Charlie&jump=-1", http.StatusBadRequest},
		{"/api/path?start=Alpha&end=Charlie&jump=far", http.StatusBadRequest},
		{"/api/path?start=Alpha&end=Charlie&use_smart_gates=maybe", http.StatusBadRequest},
		{"/api/path?start=Alpha", http.StatusBadRequest},
		{"/api/path?start=Alpha&end=Charlie&timeout=1e12", http.StatusBadRequest},
		{"/api/path?start=Alpha&end=Charlie&timeout=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := get(t, h, tt.url)
		if rec.Code != tt.want {
			t.Errorf("GET %s status = %d, want %d (body %s)", tt.url, rec.Code, tt.want, rec.Body.String())
		}
		var out map[string]string
		json.NewDecoder(rec.Body).Decode(&out)
		if out["error"] == "" {
			t.Errorf("GET %s: missing error message", tt.url)
		}
	}
}

func TestHandlePath_Timeout(t *testing.T) {
	srv := NewServer(config.Default(), "test", nil)
	srv.SetUniverse(graphtest.Grid(120, 1))
	rec := get(t, srv.Handler(), "/api/path?start=r0c0&end=r119c119&jump=1.5&optimize=hops&timeout=0.000000001")
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleExit(t *testing.T) {
	h := newTestServer(t, true)
	env := decodeEnvelope(t, get(t, h, "/api/exit?start=Alpha&jump=10"))
	if env.Version != 1 {
		t.Errorf("version = %d, want 1", env.Version)
	}
	var tuples [][]any
	if err := json.Unmarshal(env.Data, &tuples); err != nil {
		t.Fatalf("decode tuples: %v", err)
	}
	if len(tuples) != 1 || len(tuples[0]) != 3 || tuples[0][0] != "Alpha" || tuples[0][1] != "Bravo" {
		t.Fatalf("exits = %v, want [[Alpha Bravo 10]]", tuples)
	}
	if ly, _ := tuples[0][2].(float64); math.Abs(ly-10) > 1e-9 {
		t.Errorf("distance = %v, want 10", tuples[0][2])
	}

	env = decodeEnvelope(t, get(t, h, "/api/exit?start=Alpha&jump=10&detail=true"))
	if env.Version != 2 {
		t.Errorf("detail version = %d, want 2", env.Version)
	}
	var exits []webExit
	json.Unmarshal(env.Data, &exits)
	if len(exits) != 1 || exits[0].From.Name != "Alpha" || exits[0].To.Name != "Bravo" || exits[0].ToRegion != 2 {
		t.Errorf("exits = %+v, want Alpha -> Bravo", exits)
	}

	env = decodeEnvelope(t, get(t, h, "/api/exit?start=Alpha&jump=10&use_smart_gates=true&detail=true"))
	json.Unmarshal(env.Data, &exits)
	if len(exits) != 2 {
		t.Errorf("exits with smart gates = %+v, want 2", exits)
	}

	if rec := get(t, h, "/api/exit?start=Nowhere"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown start status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/api/exit?start=Alpha&detail=maybe"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad detail status = %d, want 400", rec.Code)
	}
}

func TestHandleFuelAndJump(t *testing.T) {
	h := newTestServer(t, false)

	env := decodeEnvelope(t, get(t, h, "/api/fuel?dist=20&mass=28000000&efficiency=0.5"))
	var fuel float64
	json.Unmarshal(env.Data, &fuel)
	if math.Abs(fuel-112) > 1e-9 {
		t.Errorf("fuel = %v, want 112", fuel)
	}

	env = decodeEnvelope(t, get(t, h, "/api/jump?mass=28000000&fuel=112&fuel_type=EU-40"))
	var dist float64
	json.Unmarshal(env.Data, &dist)
	if math.Abs(dist-16) > 1e-9 {
		t.Errorf("jump = %v, want 16", dist)
	}

	for _, url := range []string{
		"/api/fuel?mass=1",
		"/api/fuel?dist=1&mass=0",
		"/api/jump?mass=1&fuel=1&fuel_type=plutonium",
	} {
		if rec := get(t, h, url); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", url, rec.Code)
		}
	}
}

func TestHandleFuels(t *testing.T) {
	env := decodeEnvelope(t, get(t, newTestServer(t, false), "/api/fuels"))
	var fuels []webFuel
	json.Unmarshal(env.Data, &fuels)
	if len(fuels) != 6 {
		t.Errorf("fuels = %+v, want 6 grades", fuels)
	}

	env = decodeEnvelope(t, get(t, newTestServer(t, false), "/api/fuels?compatible_with=d1"))
	fuels = nil
	json.Unmarshal(env.Data, &fuels)
	if len(fuels) != 2 {
		t.Errorf("fuels compatible with D1 = %+v, want D1 and D2", fuels)
	}
	if rec := get(t, newTestServer(t, false), "/api/fuels?compatible_with=plutonium"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown fuel status = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, true)
	get(t, h, "/api/dist?start=Alpha&end=Bravo")
	get(t, h, "/api/dist?start=Alpha&end=Nowhere")

	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`eftb_queries_total{kind="dist",outcome="ok"} 1`,
		`eftb_queries_total{kind="dist",outcome="not_found"} 1`,
		"eftb_query_latency_ms",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, false)
	rec := get(t, h, "/api/status")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", got)
	}
}
