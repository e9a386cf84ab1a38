package network

import (
	"container/heap"
	"math"

	"github.com/Kumar-s75/DisasterOps/internal/geo"
)

// Metric selects the edge weight for a path query. Time queries use the
// effective traversal time; distance queries use the base distance and are
// unaffected by condition or traffic.
type Metric int

const (
	ByTime Metric = iota
	ByDistance
)

// Path is a computed route through the graph. Cost is in the units of the
// metric the query used.
type Path struct {
	Nodes []string
	Cost  float64
}

// Unreachable is the sentinel cost reported when no path exists.
func Unreachable() float64 { return math.Inf(1) }

func (m Metric) weight(seg *Segment) float64 {
	if m == ByDistance {
		return seg.BaseDistance
	}
	return seg.EffectiveTime()
}

// ShortestPath runs Dijkstra from origin to dest over passable edges.
// A missing path is a normal outcome reported as ok=false, never an error.
func (n *Network) ShortestPath(origin, dest string, m Metric) (Path, bool) {
	return n.search(origin, dest, m, nil)
}

// AStarPath runs A* guided by the straight-line geographic distance to the
// destination. It is used for high-priority queries where the caller wants
// fewer expansions on large graphs; Dijkstra and A* agree on the result.
func (n *Network) AStarPath(origin, dest string, m Metric) (Path, bool) {
	goal, ok := n.nodes[dest]
	if !ok {
		return Path{}, false
	}
	h := func(id string) float64 {
		nd, ok := n.nodes[id]
		if !ok {
			return 0
		}
		return geo.StraightLineKm(nd.Lat, nd.Lng, goal.Lat, goal.Lng)
	}
	return n.search(origin, dest, m, h)
}

// search is a single Dijkstra/A* implementation; a nil heuristic degrades
// to plain Dijkstra.
func (n *Network) search(origin, dest string, m Metric, h func(string) float64) (Path, bool) {
	if !n.HasNode(origin) || !n.HasNode(dest) {
		return Path{}, false
	}
	dist := map[string]float64{origin: 0}
	prev := map[string]string{}
	done := map[string]bool{}

	pq := &searchQueue{}
	heap.Init(pq)
	heap.Push(pq, searchItem{id: origin, priority: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(searchItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == dest {
			break
		}
		for to, seg := range n.adj[cur.id] {
			if done[to] {
				continue
			}
			w := m.weight(seg)
			if math.IsInf(w, 1) {
				continue
			}
			alt := dist[cur.id] + w
			if old, seen := dist[to]; !seen || alt < old {
				dist[to] = alt
				prev[to] = cur.id
				pri := alt
				if h != nil {
					pri += h(to)
				}
				heap.Push(pq, searchItem{id: to, priority: pri})
			}
		}
	}

	cost, ok := dist[dest]
	if !ok || !done[dest] {
		return Path{}, false
	}
	nodes := []string{dest}
	for at := dest; at != origin; {
		at = prev[at]
		nodes = append(nodes, at)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return Path{Nodes: nodes, Cost: cost}, true
}

type searchItem struct {
	id       string
	priority float64
}

type searchQueue []searchItem

func (q searchQueue) Len() int            { return len(q) }
func (q searchQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q searchQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *searchQueue) Push(x any)         { *q = append(*q, x.(searchItem)) }
func (q *searchQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
