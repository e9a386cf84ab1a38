package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/Kumar-s75/DisasterOps/internal/metrics"
	"github.com/Kumar-s75/DisasterOps/internal/model"
	"github.com/Kumar-s75/DisasterOps/internal/network"
	"github.com/Kumar-s75/DisasterOps/internal/opt"
	"github.com/Kumar-s75/DisasterOps/internal/predict"
	"github.com/Kumar-s75/DisasterOps/internal/store"
)

// CentersHandler handles POST/GET /v1/centers
func (s *Server) CentersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var c model.ReliefCenter
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateCenter(&c); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid relief center", err.Error(), r.URL.Path)
			return
		}
		created, err := s.Store.CreateCenter(r.Context(), c)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create center failed", err.Error(), r.URL.Path)
			return
		}
		s.Engine.AddLocation(created.Location)
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		items, err := s.Store.ListCenters(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List centers failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CenterByIDHandler handles /v1/centers/{id} and /v1/centers/{id}/resources
func (s *Server) CenterByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/centers/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	switch {
	case sub == "" && r.Method == http.MethodGet:
		c, err := s.Store.GetCenter(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Center not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get center failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case sub == "resources" && r.Method == http.MethodPut:
		var resources []model.Resource
		if err := json.NewDecoder(r.Body).Decode(&resources); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		c, err := s.Store.UpdateCenterResources(r.Context(), id, resources)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Center not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Update resources failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, c)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ZonesHandler handles POST/GET /v1/zones
func (s *Server) ZonesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var z model.DisasterZone
		if err := json.NewDecoder(r.Body).Decode(&z); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateZone(&z); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid disaster zone", err.Error(), r.URL.Path)
			return
		}
		created, err := s.Store.CreateZone(r.Context(), z)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create zone failed", err.Error(), r.URL.Path)
			return
		}
		s.Engine.AddLocation(created.Location)
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		items, err := s.Store.ListZones(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List zones failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ZoneByIDHandler handles GET/DELETE /v1/zones/{id}
func (s *Server) ZoneByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/zones/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		z, err := s.Store.GetZone(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Zone not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get zone failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, z)
	case http.MethodDelete:
		err := s.Store.DeleteZone(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Zone not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Delete zone failed", err.Error(), r.URL.Path)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// NetworkInitHandler handles POST /v1/network/initialize
func (s *Server) NetworkInitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Locations   []model.Location   `json:"locations"`
		Connections []model.Connection `json:"connections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := s.Engine.Initialize(req.Locations, req.Connections); err != nil {
		writeProblem(w, http.StatusBadRequest, "Initialize failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locations":   len(req.Locations),
		"connections": len(req.Connections),
	})
}

// SegmentsHandler handles POST /v1/network/segments
func (s *Server) SegmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var c model.Connection
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := s.Engine.AddSegment(c); err != nil {
		writeProblem(w, http.StatusNotFound, "Add segment failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ConditionHandler handles POST /v1/network/condition
func (s *Server) ConditionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		From      string `json:"from"`
		To        string `json:"to"`
		Condition string `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	c, err := network.ParseCondition(req.Condition)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid condition", err.Error(), r.URL.Path)
		return
	}
	if err := s.Engine.UpdateCondition(req.From, req.To, c); err != nil {
		writeProblem(w, http.StatusNotFound, "Segment not found", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": req.From, "to": req.To, "condition": c.Name})
}

// TrafficHandler handles POST /v1/network/traffic
func (s *Server) TrafficHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		From    string `json:"from"`
		To      string `json:"to"`
		Traffic string `json:"traffic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	t, err := network.ParseTraffic(req.Traffic)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid traffic level", err.Error(), r.URL.Path)
		return
	}
	if err := s.Engine.UpdateTraffic(req.From, req.To, t); err != nil {
		writeProblem(w, http.StatusNotFound, "Segment not found", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": req.From, "to": req.To, "traffic": t.Name})
}

// NetworkStatsHandler handles GET /v1/network/statistics
func (s *Server) NetworkStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.NetworkStatistics())
}

// SegmentHistoryHandler handles GET /v1/network/history?from=&to=
func (s *Server) SegmentHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeProblem(w, http.StatusBadRequest, "Missing parameters", "from and to are required", r.URL.Path)
		return
	}
	h := s.Engine.SegmentHistory(from, to)
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "changes": h})
}

// SimulateHandler handles POST /v1/network/simulate
func (s *Server) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Kind string `json:"kind"` // traffic or incidents
		Seed int64  `json:"seed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	rng := newRand(req.Seed)
	switch req.Kind {
	case "traffic":
		s.Engine.SimulateTraffic(rng)
	case "incidents":
		s.Engine.SimulateIncidents(rng)
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid simulation kind", "kind must be traffic or incidents", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": req.Kind})
}

// OptimizeHandler handles POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = "genetic"
	}

	centers, err := s.Store.ListCenters(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List centers failed", err.Error(), r.URL.Path)
		return
	}
	zones, err := s.Store.ListZones(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List zones failed", err.Error(), r.URL.Path)
		return
	}
	if len(centers) == 0 || len(zones) == 0 {
		writeProblem(w, http.StatusUnprocessableEntity, "Nothing to optimize",
			"at least one relief center and one disaster zone are required", r.URL.Path)
		return
	}

	start := time.Now()
	result, err := s.runOptimizer(r, req, centers, zones)
	metrics.OptimizerDuration.WithLabelValues(req.Algorithm).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OptimizerRuns.WithLabelValues(req.Algorithm, "error").Inc()
		writeProblem(w, http.StatusInternalServerError, "Optimization failed", err.Error(), r.URL.Path)
		return
	}
	metrics.OptimizerRuns.WithLabelValues(req.Algorithm, "ok").Inc()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) runOptimizer(r *http.Request, req optimizeRequest, centers []model.ReliefCenter, zones []model.DisasterZone) (any, error) {
	rng := newRand(req.Seed)

	if req.Algorithm == "greedy" {
		ptrs := make([]*model.ReliefCenter, len(centers))
		for i := range centers {
			ptrs[i] = &centers[i]
		}
		results := opt.GreedyAllocate(ptrs, zones, s.Engine.Snapshot())
		// Greedy commits: decremented stock is written back.
		for _, c := range ptrs {
			if _, err := s.Store.UpdateCenterResources(r.Context(), c.Location.ID, c.Resources); err != nil {
				return nil, err
			}
		}
		return map[string]any{"algorithm": "greedy", "allocations": results, "count": len(results)}, nil
	}

	in, err := opt.NewInputs(centers, zones, s.Engine.Snapshot())
	if err != nil {
		return nil, err
	}

	switch req.Algorithm {
	case "genetic":
		cfg := opt.DefaultGAConfig()
		if s.cfg.Optimizer.PopulationSize > 0 {
			cfg.PopulationSize = s.cfg.Optimizer.PopulationSize
		}
		if s.cfg.Optimizer.Generations > 0 {
			cfg.Generations = s.cfg.Optimizer.Generations
		}
		if s.cfg.Optimizer.MutationRate > 0 {
			cfg.MutationRate = s.cfg.Optimizer.MutationRate
		}
		if req.PopulationSize > 0 {
			cfg.PopulationSize = req.PopulationSize
		}
		if req.Generations > 0 {
			cfg.Generations = req.Generations
		}
		if req.MutationRate > 0 {
			cfg.MutationRate = req.MutationRate
		}
		ga, err := opt.NewGeneticOptimizer(cfg, rng)
		if err != nil {
			return nil, err
		}
		sol, err := ga.OptimizeAllocation(in)
		if err != nil {
			return nil, err
		}
		if err := s.Store.SaveSolution(r.Context(), sol); err != nil {
			return nil, err
		}
		return sol, nil
	case "annealing":
		cfg := opt.DefaultSAConfig()
		if req.InitialTemp > 0 {
			cfg.InitialTemp = req.InitialTemp
		}
		if req.CoolingRate > 0 {
			cfg.CoolingRate = req.CoolingRate
		}
		sa, err := opt.NewAnnealingOptimizer(cfg, rng)
		if err != nil {
			return nil, err
		}
		sol, err := sa.OptimizeAllocation(in)
		if err != nil {
			return nil, err
		}
		if err := s.Store.SaveSolution(r.Context(), sol); err != nil {
			return nil, err
		}
		return sol, nil
	case "pareto":
		cfg := opt.DefaultParetoConfig()
		if req.PopulationSize > 0 {
			cfg.PopulationSize = req.PopulationSize
		}
		if req.Generations > 0 {
			cfg.Generations = req.Generations
		}
		po, err := opt.NewParetoOptimizer(cfg, rng)
		if err != nil {
			return nil, err
		}
		front, err := po.OptimizeParetoFront(in)
		if err != nil {
			return nil, err
		}
		for _, sol := range front {
			if err := s.Store.SaveSolution(r.Context(), sol); err != nil {
				return nil, err
			}
		}
		return map[string]any{"algorithm": "pareto", "solutions": front, "count": len(front)}, nil
	}
	return nil, fmt.Errorf("unknown algorithm: %s", req.Algorithm)
}

// SolutionsHandler handles GET /v1/solutions
func (s *Server) SolutionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListSolutions(r.Context(), r.URL.Query().Get("algorithm"), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List solutions failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// SolutionByIDHandler handles GET /v1/solutions/{id}
func (s *Server) SolutionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/solutions/")
	sol, err := s.Store.GetSolution(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Solution not found", "", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get solution failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, sol)
}

// RoutesHandler handles POST /v1/routes
func (s *Server) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Origin      string   `json:"origin"`
		Destination string   `json:"destination"`
		Priority    int      `json:"priority"`
		Avoid       []string `json:"avoid,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.Priority == 0 {
		req.Priority = 3
	}
	if req.Priority < 1 || req.Priority > 5 {
		writeProblem(w, http.StatusBadRequest, "Invalid priority", "priority must be in [1,5]", r.URL.Path)
		return
	}
	if !s.Engine.HasNode(req.Origin) || !s.Engine.HasNode(req.Destination) {
		writeProblem(w, http.StatusNotFound, "Unknown location", "origin or destination is not in the network", r.URL.Path)
		return
	}
	var avoid map[string]bool
	if len(req.Avoid) > 0 {
		avoid = map[string]bool{}
		for _, id := range req.Avoid {
			avoid[id] = true
		}
	}
	route, ok := s.Engine.FindOptimalRoute(req.Origin, req.Destination, req.Priority, avoid)
	if !ok {
		writeProblem(w, http.StatusUnprocessableEntity, "No route",
			"no passable path between origin and destination", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// AlternativesHandler handles GET /v1/routes/alternatives
func (s *Server) AlternativesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	origin, destination := q.Get("origin"), q.Get("destination")
	if origin == "" || destination == "" {
		writeProblem(w, http.StatusBadRequest, "Missing parameters", "origin and destination are required", r.URL.Path)
		return
	}
	count := 3
	if v := q.Get("count"); v != "" {
		fmt.Sscanf(v, "%d", &count)
	}
	if count < 1 || count > 10 {
		writeProblem(w, http.StatusBadRequest, "Invalid count", "count must be in [1,10]", r.URL.Path)
		return
	}
	routes := s.Engine.FindAlternativeRoutes(origin, destination, count)
	writeJSON(w, http.StatusOK, map[string]any{"items": routes, "count": len(routes)})
}

// RouteByIDHandler handles GET /v1/routes/{id}/status
func (s *Server) RouteByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/routes/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || sub != "status" || r.Method != http.MethodGet {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	st, ok := s.Engine.RouteStatus(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Route not found", "", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HotspotsHandler handles GET /v1/predict/hotspots
func (s *Server) HotspotsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var seed int64
	if v := r.URL.Query().Get("seed"); v != "" {
		fmt.Sscanf(v, "%d", &seed)
	}
	zones, err := s.Store.ListZones(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List zones failed", err.Error(), r.URL.Path)
		return
	}
	ptrs := make([]*model.DisasterZone, len(zones))
	for i := range zones {
		ptrs[i] = &zones[i]
	}
	hotspots := predict.New(newRand(seed)).Hotspots(ptrs)
	writeJSON(w, http.StatusOK, map[string]any{"items": hotspots, "count": len(hotspots)})
}

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler handles GET /readyz
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// newRand builds a source that is deterministic when a seed is supplied.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
