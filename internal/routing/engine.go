package routing

import (
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kumar-s75/DisasterOps/internal/geo"
	"github.com/Kumar-s75/DisasterOps/internal/metrics"
	"github.com/Kumar-s75/DisasterOps/internal/model"
	"github.com/Kumar-s75/DisasterOps/internal/network"
)

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultHistoryLimit = 256
)

// Event describes one segment mutation, published to any attached notifier
// (the API layer streams these over SSE/WebSocket).
type Event struct {
	Type  string    `json:"type"` // condition.updated, traffic.updated
	From  string    `json:"from"`
	To    string    `json:"to"`
	Value string    `json:"value"`
	At    time.Time `json:"at"`
}

// Notifier receives engine events. Implementations must not block.
type Notifier interface {
	PublishNetwork(evt Event)
}

// ChangeRecord is one entry of a segment's bounded update history.
type ChangeRecord struct {
	At    time.Time `json:"at"`
	Field string    `json:"field"` // condition or traffic
	Value string    `json:"value"`
}

// DynamicRoute is an engine-owned active route. Segments reference the
// authoritative records, so re-summing after an update reflects current
// conditions without recomputing the path.
type DynamicRoute struct {
	ID             string
	Origin         string
	Destination    string
	Waypoints      []string
	segments       []*network.Segment
	TotalDistance  float64
	EstimatedTime  float64
	Priority       int
	CreatedAt      time.Time
	RecalculatedAt time.Time
}

// resum recalculates the distance/time aggregates from current segment
// state. Callers hold the engine write lock.
func (r *DynamicRoute) resum() {
	r.TotalDistance, r.EstimatedTime = 0, 0
	for _, seg := range r.segments {
		r.TotalDistance += seg.BaseDistance
		r.EstimatedTime += seg.EffectiveTime()
	}
	r.RecalculatedAt = time.Now()
}

// SegmentView is a read-only snapshot of one traversed segment.
type SegmentView struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Distance  float64 `json:"distance"`
	Time      float64 `json:"time"`
	Condition string  `json:"roadCondition"`
	Traffic   string  `json:"trafficLevel"`
}

// RouteView is the immutable result handed to callers; it never aliases
// engine state.
type RouteView struct {
	ID             string        `json:"routeId"`
	Origin         string        `json:"origin"`
	Destination    string        `json:"destination"`
	Waypoints      []string      `json:"waypoints"`
	Segments       []SegmentView `json:"segments"`
	TotalDistance  float64       `json:"totalDistance"`
	EstimatedTime  float64       `json:"estimatedTime"`
	Priority       int           `json:"priority"`
	CreatedAt      time.Time     `json:"createdAt"`
	RecalculatedAt time.Time     `json:"recalculatedAt"`
}

// Status summarizes the live state of an active route.
type Status struct {
	RouteID         string    `json:"routeId"`
	Status          string    `json:"status"` // active or blocked
	EstimatedTime   float64   `json:"estimatedTime"`
	TotalDistance   float64   `json:"totalDistance"`
	DelayFactor     float64   `json:"delayFactor"`
	BlockedSegments int       `json:"blockedSegments"`
	LastUpdated     time.Time `json:"lastUpdated"`
	Waypoints       []string  `json:"waypoints"`
}

// Stats is the network summary exposed by the API.
type Stats struct {
	TotalSegments    int            `json:"totalSegments"`
	BlockedSegments  int            `json:"blockedSegments"`
	PassableSegments int            `json:"passableSegments"`
	ActiveRoutes     int            `json:"activeRoutes"`
	TrafficDist      map[string]int `json:"trafficDistribution"`
	ConditionDist    map[string]int `json:"conditionDistribution"`
	CacheSize        int            `json:"cacheSize"`
}

// Config tunes the engine; zero values take defaults.
type Config struct {
	CacheTTL     time.Duration
	HistoryLimit int
	Notifier     Notifier
}

type cacheEntry struct {
	waypoints []string
	expires   time.Time
}

// Engine owns the authoritative road network, the active-route table, and
// the route cache. All mutation goes through a single exclusive section so
// readers never observe an edge changed but its cache not yet invalidated.
type Engine struct {
	mu           sync.RWMutex
	net          *network.Network
	active       map[string]*DynamicRoute
	cache        map[network.Pair]cacheEntry
	history      map[network.Pair][]ChangeRecord
	cacheTTL     time.Duration
	historyLimit int
	notifier     Notifier
	now          func() time.Time
}

func NewEngine(cfg Config) *Engine {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &Engine{
		net:          network.New(),
		active:       map[string]*DynamicRoute{},
		cache:        map[network.Pair]cacheEntry{},
		history:      map[network.Pair][]ChangeRecord{},
		cacheTTL:     cfg.CacheTTL,
		historyLimit: cfg.HistoryLimit,
		notifier:     cfg.Notifier,
		now:          time.Now,
	}
}

// Initialize seeds the network from locations and connections. A missing
// travel time defaults to distance at 50 km/h.
func (e *Engine) Initialize(locations []model.Location, conns []model.Connection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, loc := range locations {
		e.net.AddNode(network.Node{ID: loc.ID, Name: loc.Name, Lat: loc.Lat, Lng: loc.Lng, Kind: loc.Kind})
	}
	for _, c := range conns {
		d, t := e.segmentDefaults(c)
		if _, err := e.net.AddSegment(c.From, c.To, d, t); err != nil {
			return err
		}
	}
	return nil
}

// segmentDefaults fills a missing distance from the endpoint coordinates
// and a missing travel time from the distance at 50 km/h.
func (e *Engine) segmentDefaults(c model.Connection) (distance, baseTime float64) {
	distance, baseTime = c.Distance, c.Time
	if distance <= 0 {
		from, okFrom := e.net.Node(c.From)
		to, okTo := e.net.Node(c.To)
		if okFrom && okTo {
			distance = geo.HaversineKm(from.Lat, from.Lng, to.Lat, to.Lng)
		}
	}
	if baseTime <= 0 {
		baseTime = distance / 50
	}
	return distance, baseTime
}

// AddLocation registers a node after initialization, connecting it to
// nothing; callers add segments explicitly.
func (e *Engine) AddLocation(loc model.Location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.net.AddNode(network.Node{ID: loc.ID, Name: loc.Name, Lat: loc.Lat, Lng: loc.Lng, Kind: loc.Kind})
}

// AddSegment wires a directed connection at runtime.
func (e *Engine) AddSegment(c model.Connection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, t := e.segmentDefaults(c)
	_, err := e.net.AddSegment(c.From, c.To, d, t)
	return err
}

// Snapshot returns an independent copy of the network for optimizer runs.
func (e *Engine) Snapshot() *network.Network {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.net.Copy(nil)
}

// HasNode reports whether the engine knows the node.
func (e *Engine) HasNode(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.net.HasNode(id)
}

// FindOptimalRoute resolves a route between two known nodes, serving from
// cache inside the TTL. Priority 4 and above routes search with A*; lower
// priorities use Dijkstra. No path is a normal outcome: ok=false.
func (e *Engine) FindOptimalRoute(origin, destination string, priority int, avoid map[string]bool) (RouteView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.net.HasNode(origin) || !e.net.HasNode(destination) {
		return RouteView{}, false
	}

	key := network.Pair{From: origin, To: destination}
	waypoints := e.cachedWaypoints(key)
	if waypoints == nil {
		waypoints = e.computePath(origin, destination, priority, avoid)
		if waypoints == nil {
			return RouteView{}, false
		}
		e.cache[key] = cacheEntry{waypoints: waypoints, expires: e.now().Add(e.cacheTTL)}
	}

	route := e.materialize(waypoints, priority)
	e.active[route.ID] = route
	return e.view(route), true
}

// cachedWaypoints returns a fresh cache hit or nil, expiring stale entries.
func (e *Engine) cachedWaypoints(key network.Pair) []string {
	entry, ok := e.cache[key]
	if !ok {
		metrics.RouteCache.WithLabelValues("miss").Inc()
		return nil
	}
	if e.now().After(entry.expires) {
		delete(e.cache, key)
		metrics.RouteCache.WithLabelValues("expired").Inc()
		return nil
	}
	metrics.RouteCache.WithLabelValues("hit").Inc()
	return entry.waypoints
}

func (e *Engine) computePath(origin, destination string, priority int, avoid map[string]bool) []string {
	g := e.net
	if len(avoid) > 0 {
		g = e.net.Copy(avoid)
	}
	var p network.Path
	var ok bool
	algo := "dijkstra"
	if priority >= 4 {
		algo = "astar"
		p, ok = g.AStarPath(origin, destination, network.ByTime)
	} else {
		p, ok = g.ShortestPath(origin, destination, network.ByTime)
	}
	if !ok {
		metrics.RouteComputations.WithLabelValues(algo, "no_path").Inc()
		return nil
	}
	metrics.RouteComputations.WithLabelValues(algo, "found").Inc()
	return p.Nodes
}

// materialize expands waypoints into the segment list and aggregates.
func (e *Engine) materialize(waypoints []string, priority int) *DynamicRoute {
	route := &DynamicRoute{
		ID:          uuid.NewString(),
		Origin:      waypoints[0],
		Destination: waypoints[len(waypoints)-1],
		Waypoints:   append([]string(nil), waypoints...),
		Priority:    priority,
		CreatedAt:   e.now(),
	}
	for i := 0; i+1 < len(waypoints); i++ {
		if seg, ok := e.net.Segment(waypoints[i], waypoints[i+1]); ok {
			route.segments = append(route.segments, seg)
		}
	}
	route.resum()
	return route
}

func (e *Engine) view(r *DynamicRoute) RouteView {
	segs := make([]SegmentView, len(r.segments))
	for i, s := range r.segments {
		segs[i] = SegmentView{
			From:      s.From,
			To:        s.To,
			Distance:  s.BaseDistance,
			Time:      s.EffectiveTime(),
			Condition: s.Condition.Name,
			Traffic:   s.Traffic.Name,
		}
	}
	return RouteView{
		ID:             r.ID,
		Origin:         r.Origin,
		Destination:    r.Destination,
		Waypoints:      append([]string(nil), r.Waypoints...),
		Segments:       segs,
		TotalDistance:  r.TotalDistance,
		EstimatedTime:  r.EstimatedTime,
		Priority:       r.Priority,
		CreatedAt:      r.CreatedAt,
		RecalculatedAt: r.RecalculatedAt,
	}
}

// FindAlternativeRoutes returns up to count edge-disjoint routes: each
// computed path's edges are excluded before the next search. Alternatives
// are not registered as active routes.
func (e *Engine) FindAlternativeRoutes(origin, destination string, count int) []RouteView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.net.HasNode(origin) || !e.net.HasNode(destination) {
		return nil
	}
	scratch := e.net.Copy(nil)
	var out []RouteView
	for i := 0; i < count; i++ {
		p, ok := scratch.ShortestPath(origin, destination, network.ByTime)
		if !ok {
			break
		}
		route := &DynamicRoute{
			ID:          uuid.NewString(),
			Origin:      origin,
			Destination: destination,
			Waypoints:   append([]string(nil), p.Nodes...),
			Priority:    3,
			CreatedAt:   e.now(),
		}
		for j := 0; j+1 < len(p.Nodes); j++ {
			if seg, ok := e.net.Segment(p.Nodes[j], p.Nodes[j+1]); ok {
				route.segments = append(route.segments, seg)
			}
		}
		route.resum()
		out = append(out, e.view(route))
		for j := 0; j+1 < len(p.Nodes); j++ {
			scratch.DropEdge(p.Nodes[j], p.Nodes[j+1])
		}
	}
	return out
}

// UpdateCondition is part of the engine's single serialized mutation path:
// segment multiplier, history, graph edge, cache invalidation, and active
// route recalculation all change together or not at all.
func (e *Engine) UpdateCondition(from, to string, c network.Condition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seg, err := e.net.SetCondition(from, to, c)
	if err != nil {
		return err
	}
	e.recordChange(from, to, "condition", c.Name)
	e.invalidateCache(from, to)
	e.recalculateAffected(from, to)
	metrics.SegmentUpdates.WithLabelValues("condition").Inc()
	log.Printf("routing: condition %s->%s = %s (effective %.2fh)", from, to, c.Name, seg.EffectiveTime())
	e.notify(Event{Type: "condition.updated", From: from, To: to, Value: c.Name, At: e.now()})
	return nil
}

// UpdateTraffic updates a segment's traffic level with the same
// invalidation/recalculation discipline as UpdateCondition.
func (e *Engine) UpdateTraffic(from, to string, t network.Traffic) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.net.SetTraffic(from, to, t); err != nil {
		return err
	}
	e.recordChange(from, to, "traffic", t.Name)
	e.invalidateCache(from, to)
	e.recalculateAffected(from, to)
	metrics.SegmentUpdates.WithLabelValues("traffic").Inc()
	e.notify(Event{Type: "traffic.updated", From: from, To: to, Value: t.Name, At: e.now()})
	return nil
}

func (e *Engine) recordChange(from, to, field, value string) {
	key := network.Pair{From: from, To: to}
	h := append(e.history[key], ChangeRecord{At: e.now(), Field: field, Value: value})
	if len(h) > e.historyLimit {
		h = h[len(h)-e.historyLimit:]
	}
	e.history[key] = h
}

// invalidateCache drops every cached route whose waypoint sequence
// traverses the (from, to) pair.
func (e *Engine) invalidateCache(from, to string) {
	for key, entry := range e.cache {
		for i := 0; i+1 < len(entry.waypoints); i++ {
			if entry.waypoints[i] == from && entry.waypoints[i+1] == to {
				delete(e.cache, key)
				metrics.CacheInvalidations.Inc()
				break
			}
		}
	}
}

// recalculateAffected re-sums every active route that traverses the
// changed segment. The path itself is not recomputed.
func (e *Engine) recalculateAffected(from, to string) {
	for _, route := range e.active {
		for _, seg := range route.segments {
			if seg.From == from && seg.To == to {
				route.resum()
				break
			}
		}
	}
}

func (e *Engine) notify(evt Event) {
	if e.notifier != nil {
		e.notifier.PublishNetwork(evt)
	}
}

// SegmentHistory returns the bounded change history of a segment.
func (e *Engine) SegmentHistory(from, to string) []ChangeRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]ChangeRecord(nil), e.history[network.Pair{From: from, To: to}]...)
}

// RouteStatus reports the live state of an active route.
func (e *Engine) RouteStatus(routeID string) (Status, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	route, ok := e.active[routeID]
	if !ok {
		return Status{}, false
	}
	blocked := 0
	delay := 0.0
	for _, seg := range route.segments {
		if !seg.Passable() {
			blocked++
			continue
		}
		delay += seg.Condition.Factor * seg.Traffic.Factor
	}
	if n := len(route.segments); n > 0 {
		delay /= float64(n)
	}
	state := "active"
	if blocked > 0 {
		state = "blocked"
	}
	return Status{
		RouteID:         route.ID,
		Status:          state,
		EstimatedTime:   route.EstimatedTime,
		TotalDistance:   route.TotalDistance,
		DelayFactor:     delay,
		BlockedSegments: blocked,
		LastUpdated:     route.RecalculatedAt,
		Waypoints:       append([]string(nil), route.Waypoints...),
	}, true
}

// NetworkStatistics summarizes current network and cache state.
func (e *Engine) NetworkStatistics() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Stats{
		TotalSegments: e.net.SegmentCount(),
		ActiveRoutes:  len(e.active),
		TrafficDist:   map[string]int{},
		ConditionDist: map[string]int{},
		CacheSize:     len(e.cache),
	}
	e.net.Segments(func(s *network.Segment) {
		if !s.Passable() {
			st.BlockedSegments++
		}
		st.TrafficDist[s.Traffic.Name]++
		st.ConditionDist[s.Condition.Name]++
	})
	st.PassableSegments = st.TotalSegments - st.BlockedSegments
	return st
}

// SweepCache drops expired cache entries. Caller-triggered; the engine
// schedules nothing itself.
func (e *Engine) SweepCache() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	now := e.now()
	for key, entry := range e.cache {
		if now.After(entry.expires) {
			delete(e.cache, key)
			removed++
		}
	}
	return removed
}

// SimulateTraffic assigns random traffic levels to up to three segments.
// Caller-triggered, never self-scheduling.
func (e *Engine) SimulateTraffic(rng *rand.Rand) {
	levels := network.TrafficLevels()
	for _, p := range e.sampleSegments(rng, 3) {
		_ = e.UpdateTraffic(p.From, p.To, levels[rng.Intn(len(levels))])
	}
}

// SimulateIncidents degrades up to two segments; roughly 30% become
// blocked outright.
func (e *Engine) SimulateIncidents(rng *rand.Rand) {
	degraded := network.DegradedConditions()
	for _, p := range e.sampleSegments(rng, 2) {
		c := network.ConditionBlocked
		if rng.Float64() < 0.7 {
			c = degraded[rng.Intn(len(degraded))]
		}
		_ = e.UpdateCondition(p.From, p.To, c)
	}
}

func (e *Engine) sampleSegments(rng *rand.Rand, max int) []network.Pair {
	e.mu.RLock()
	pairs := make([]network.Pair, 0, e.net.SegmentCount())
	e.net.Segments(func(s *network.Segment) {
		pairs = append(pairs, network.Pair{From: s.From, To: s.To})
	})
	e.mu.RUnlock()

	// map iteration order is random; sort before shuffling so a seeded
	// source samples reproducibly
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
	if len(pairs) > max {
		pairs = pairs[:max]
	}
	return pairs
}
