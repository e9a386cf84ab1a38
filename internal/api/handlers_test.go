package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kumar-s75/DisasterOps/internal/config"
	"github.com/Kumar-s75/DisasterOps/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	var cfg config.Config
	cfg.Optimizer.PopulationSize = 20
	cfg.Optimizer.Generations = 30
	cfg.Optimizer.MutationRate = 0.1
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	h(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return v
}

// seedScenario loads two centers, two zones, and a small road network.
func seedScenario(t *testing.T, s *Server) (centerIDs, zoneIDs []string) {
	t.Helper()
	centers := []model.ReliefCenter{
		{
			Location: model.Location{ID: "rc1", Name: "North Depot", Lat: 40.8, Lng: -74.0},
			Resources: []model.Resource{
				{ID: "food", Name: "Food Packages", Quantity: 1000, Unit: "packages"},
				{ID: "water", Name: "Water Bottles", Quantity: 5000, Unit: "bottles"},
			},
			Capacity: 2000,
		},
		{
			Location: model.Location{ID: "rc2", Name: "South Depot", Lat: 40.6, Lng: -74.1},
			Resources: []model.Resource{
				{ID: "medical", Name: "Medical Kits", Quantity: 200, Unit: "kits"},
			},
			Capacity: 500,
		},
	}
	for _, c := range centers {
		rr := postJSON(t, s.CentersHandler, "/v1/centers", c)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create center: %d %s", rr.Code, rr.Body.String())
		}
		centerIDs = append(centerIDs, c.Location.ID)
	}

	zones := []model.DisasterZone{
		{
			Location:           model.Location{ID: "dz1", Name: "Flood Zone", Lat: 40.75, Lng: -73.9},
			Severity:           8,
			PopulationAffected: 12000,
			Priority:           5,
			ResourcesNeeded:    []model.Resource{{ID: "food", Quantity: 300}, {ID: "water", Quantity: 900}},
		},
		{
			Location:           model.Location{ID: "dz2", Name: "Quake Zone", Lat: 40.65, Lng: -74.2},
			Severity:           6,
			PopulationAffected: 4000,
			Priority:           4,
			ResourcesNeeded:    []model.Resource{{ID: "medical", Quantity: 50}},
		},
	}
	for _, z := range zones {
		rr := postJSON(t, s.ZonesHandler, "/v1/zones", z)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create zone: %d %s", rr.Code, rr.Body.String())
		}
		zoneIDs = append(zoneIDs, z.Location.ID)
	}

	rr := postJSON(t, s.NetworkInitHandler, "/v1/network/initialize", map[string]any{
		"connections": []model.Connection{
			{From: "rc1", To: "dz1", Distance: 50, Time: 1},
			{From: "rc1", To: "dz2", Distance: 70, Time: 1.4},
			{From: "rc2", To: "dz1", Distance: 20, Time: 0.4},
			{From: "rc2", To: "dz2", Distance: 90, Time: 1.8},
			{From: "rc1", To: "rc2", Distance: 40, Time: 0.8},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("initialize network: %d %s", rr.Code, rr.Body.String())
	}
	return centerIDs, zoneIDs
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestCentersCreateListGet(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := httptest.NewRecorder()
	s.CentersHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/centers", nil))
	if rr.Code != 200 {
		t.Fatalf("list centers: %d", rr.Code)
	}
	list := decode[map[string]any](t, rr)
	if int(list["count"].(float64)) != 2 {
		t.Fatalf("count = %v", list["count"])
	}

	rr = httptest.NewRecorder()
	s.CenterByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/centers/rc1", nil))
	if rr.Code != 200 {
		t.Fatalf("get center: %d", rr.Code)
	}
	c := decode[model.ReliefCenter](t, rr)
	if c.Location.Name != "North Depot" || len(c.Resources) != 2 {
		t.Fatalf("center = %+v", c)
	}

	rr = httptest.NewRecorder()
	s.CenterByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/centers/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing center: %d", rr.Code)
	}
}

func TestCenterValidation(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.CentersHandler, "/v1/centers", model.ReliefCenter{Capacity: -1})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid center accepted: %d", rr.Code)
	}
	rr = postJSON(t, s.ZonesHandler, "/v1/zones", model.DisasterZone{
		Location: model.Location{Name: "x"}, Severity: 99, Priority: 1,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid zone accepted: %d", rr.Code)
	}
}

func TestZoneDelete(t *testing.T) {
	s := newTestServer(t)
	_, zoneIDs := seedScenario(t, s)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/zones/"+zoneIDs[0], nil)
	s.ZoneByIDHandler(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete zone: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ZoneByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/zones/"+zoneIDs[0], nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("deleted zone still readable: %d", rr.Code)
	}
}

func TestOptimizeGenetic(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", optimizeRequest{Algorithm: "genetic", Seed: 42})
	if rr.Code != 200 {
		t.Fatalf("optimize: %d %s", rr.Code, rr.Body.String())
	}
	sol := decode[model.AllocationSolution](t, rr)
	if sol.Algorithm != "genetic" || sol.ID == "" {
		t.Fatalf("solution = %+v", sol)
	}
	if len(sol.Routes) != 2 {
		t.Fatalf("routes = %v, want one per zone", sol.Routes)
	}

	// The run is persisted and retrievable.
	rr = httptest.NewRecorder()
	s.SolutionByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solutions/"+sol.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get solution: %d", rr.Code)
	}
}

func TestOptimizeAnnealingAndPareto(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", optimizeRequest{Algorithm: "annealing", Seed: 7})
	if rr.Code != 200 {
		t.Fatalf("annealing: %d %s", rr.Code, rr.Body.String())
	}
	sol := decode[model.AllocationSolution](t, rr)
	if sol.Algorithm != "annealing" {
		t.Fatalf("algorithm = %s", sol.Algorithm)
	}

	rr = postJSON(t, s.OptimizeHandler, "/v1/optimize", optimizeRequest{Algorithm: "pareto", Seed: 7, Generations: 10})
	if rr.Code != 200 {
		t.Fatalf("pareto: %d %s", rr.Code, rr.Body.String())
	}
	front := decode[map[string]any](t, rr)
	if int(front["count"].(float64)) < 1 {
		t.Fatalf("pareto front empty: %v", front)
	}
}

func TestOptimizeGreedyCommitsStock(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", optimizeRequest{Algorithm: "greedy"})
	if rr.Code != 200 {
		t.Fatalf("greedy: %d %s", rr.Code, rr.Body.String())
	}
	res := decode[map[string]any](t, rr)
	if int(res["count"].(float64)) != 2 {
		t.Fatalf("allocations = %v, want both zones served", res["count"])
	}

	rr = httptest.NewRecorder()
	s.CenterByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/centers/rc1", nil))
	c := decode[model.ReliefCenter](t, rr)
	food, ok := c.Resource("food")
	if !ok || food.Quantity != 700 {
		t.Fatalf("food stock = %+v, want 700 after serving dz1", food)
	}
}

func TestOptimizeRejectsUnknownAlgorithmAndEmptyProblem(t *testing.T) {
	s := newTestServer(t)

	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", map[string]any{"algorithm": "magic"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown algorithm: %d", rr.Code)
	}
	rr = postJSON(t, s.OptimizeHandler, "/v1/optimize", optimizeRequest{Algorithm: "genetic"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty problem: %d", rr.Code)
	}
}

func TestRouteLifecycle(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.RoutesHandler, "/v1/routes", map[string]any{
		"origin": "rc1", "destination": "dz1", "priority": 5,
	})
	if rr.Code != 200 {
		t.Fatalf("create route: %d %s", rr.Code, rr.Body.String())
	}
	route := decode[map[string]any](t, rr)
	id, _ := route["routeId"].(string)
	if id == "" {
		t.Fatalf("route = %v", route)
	}

	rr = httptest.NewRecorder()
	s.RouteByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/routes/"+id+"/status", nil))
	if rr.Code != 200 {
		t.Fatalf("route status: %d", rr.Code)
	}
	st := decode[map[string]any](t, rr)
	if st["status"] != "active" {
		t.Fatalf("status = %v", st["status"])
	}

	// Block the direct road and confirm the route is flagged.
	rr = postJSON(t, s.ConditionHandler, "/v1/network/condition", map[string]any{
		"from": "rc1", "to": "dz1", "condition": "blocked",
	})
	if rr.Code != 200 {
		t.Fatalf("block: %d %s", rr.Code, rr.Body.String())
	}
	rr = httptest.NewRecorder()
	s.RouteByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/routes/"+id+"/status", nil))
	st = decode[map[string]any](t, rr)
	if st["status"] != "blocked" {
		t.Fatalf("status after block = %v", st["status"])
	}

	// A fresh request routes around via rc2.
	rr = postJSON(t, s.RoutesHandler, "/v1/routes", map[string]any{
		"origin": "rc1", "destination": "dz1",
	})
	if rr.Code != 200 {
		t.Fatalf("reroute: %d %s", rr.Code, rr.Body.String())
	}
	detour := decode[struct {
		Waypoints []string `json:"waypoints"`
	}](t, rr)
	want := []string{"rc1", "rc2", "dz1"}
	if fmt.Sprint(detour.Waypoints) != fmt.Sprint(want) {
		t.Fatalf("detour = %v, want %v", detour.Waypoints, want)
	}
}

func TestRouteUnknownLocationAndNoPath(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.RoutesHandler, "/v1/routes", map[string]any{
		"origin": "rc1", "destination": "nowhere",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown destination: %d", rr.Code)
	}

	// dz1 has no outgoing edges, so dz1 -> rc1 is unreachable.
	rr = postJSON(t, s.RoutesHandler, "/v1/routes", map[string]any{
		"origin": "dz1", "destination": "rc1",
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no path: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAlternativesEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := httptest.NewRecorder()
	s.AlternativesHandler(rr, httptest.NewRequest(http.MethodGet,
		"/v1/routes/alternatives?origin=rc1&destination=dz1&count=3", nil))
	if rr.Code != 200 {
		t.Fatalf("alternatives: %d %s", rr.Code, rr.Body.String())
	}
	res := decode[map[string]any](t, rr)
	if int(res["count"].(float64)) != 2 {
		t.Fatalf("alternatives count = %v, want 2 (direct and via rc2)", res["count"])
	}
}

func TestNetworkStatsAndHistory(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.TrafficHandler, "/v1/network/traffic", map[string]any{
		"from": "rc1", "to": "dz1", "traffic": "heavy",
	})
	if rr.Code != 200 {
		t.Fatalf("traffic: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.NetworkStatsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/network/statistics", nil))
	stats := decode[map[string]any](t, rr)
	if int(stats["totalSegments"].(float64)) != 5 {
		t.Fatalf("stats = %v", stats)
	}

	rr = httptest.NewRecorder()
	s.SegmentHistoryHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/network/history?from=rc1&to=dz1", nil))
	hist := decode[map[string]any](t, rr)
	changes := hist["changes"].([]any)
	if len(changes) != 1 {
		t.Fatalf("history = %v", hist)
	}

	rr = postJSON(t, s.TrafficHandler, "/v1/network/traffic", map[string]any{
		"from": "rc1", "to": "dz1", "traffic": "gridlock",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad traffic level: %d", rr.Code)
	}
}

func TestSimulateEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := postJSON(t, s.SimulateHandler, "/v1/network/simulate", map[string]any{"kind": "traffic", "seed": 9})
	if rr.Code != 200 {
		t.Fatalf("simulate: %d %s", rr.Code, rr.Body.String())
	}
	rr = postJSON(t, s.SimulateHandler, "/v1/network/simulate", map[string]any{"kind": "weather"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad kind: %d", rr.Code)
	}
}

func TestHotspotsEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	rr := httptest.NewRecorder()
	s.HotspotsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/predict/hotspots?seed=1", nil))
	if rr.Code != 200 {
		t.Fatalf("hotspots: %d %s", rr.Code, rr.Body.String())
	}
	res := decode[map[string]any](t, rr)
	if int(res["count"].(float64)) < 1 {
		t.Fatalf("expected at least one hotspot, got %v", res)
	}
}

func TestSolutionsList(t *testing.T) {
	s := newTestServer(t)
	seedScenario(t, s)

	for i := 0; i < 2; i++ {
		rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", optimizeRequest{Algorithm: "annealing", Seed: int64(i + 1)})
		if rr.Code != 200 {
			t.Fatalf("optimize %d: %d", i, rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	s.SolutionsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solutions?algorithm=annealing", nil))
	res := decode[map[string]any](t, rr)
	if int(res["count"].(float64)) != 2 {
		t.Fatalf("solutions = %v", res)
	}
}
