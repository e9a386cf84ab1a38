package network

import (
	"errors"
	"time"
)

var ErrSegmentNotFound = errors.New("segment not found")
var ErrNodeNotFound = errors.New("node not found")

// Pair is the ordered (from, to) key of a directed segment.
type Pair struct {
	From string
	To   string
}

// Node is a routable point. Kind mirrors model.Location kinds.
type Node struct {
	ID   string
	Name string
	Lat  float64
	Lng  float64
	Kind string
}

// Segment is a directed road between two nodes. Base distance and time are
// immutable; condition and traffic scale the effective traversal time.
type Segment struct {
	From         string
	To           string
	BaseDistance float64
	BaseTime     float64
	Condition    Condition
	Traffic      Traffic
	LastUpdated  time.Time
}

// EffectiveTime is base time scaled by road condition and traffic. It is
// +Inf while the segment is blocked.
func (s *Segment) EffectiveTime() float64 {
	return s.BaseTime * s.Condition.Factor * s.Traffic.Factor
}

// Passable reports whether the segment can currently be traversed.
func (s *Segment) Passable() bool { return !s.Condition.Blocked() }

// Network is a directed weighted road graph: a segment table keyed by
// ordered node pairs plus an adjacency structure derived from it. A blocked
// segment is dropped from the adjacency but retained in the table so it can
// be restored later. Network carries no lock of its own; the routing engine
// serializes mutation, and optimizers work on independent snapshots.
type Network struct {
	nodes    map[string]Node
	segments map[Pair]*Segment
	adj      map[string]map[string]*Segment
}

func New() *Network {
	return &Network{
		nodes:    map[string]Node{},
		segments: map[Pair]*Segment{},
		adj:      map[string]map[string]*Segment{},
	}
}

// AddNode registers or overwrites a node.
func (n *Network) AddNode(node Node) {
	n.nodes[node.ID] = node
	if n.adj[node.ID] == nil {
		n.adj[node.ID] = map[string]*Segment{}
	}
}

// AddSegment creates or overwrites the directed segment and its edge. Both
// endpoints must already be known.
func (n *Network) AddSegment(from, to string, distance, baseTime float64) (*Segment, error) {
	if _, ok := n.nodes[from]; !ok {
		return nil, ErrNodeNotFound
	}
	if _, ok := n.nodes[to]; !ok {
		return nil, ErrNodeNotFound
	}
	seg := &Segment{
		From:         from,
		To:           to,
		BaseDistance: distance,
		BaseTime:     baseTime,
		Condition:    ConditionGood,
		Traffic:      TrafficLight,
		LastUpdated:  time.Now(),
	}
	n.segments[Pair{from, to}] = seg
	n.adj[from][to] = seg
	return seg, nil
}

// SetCondition updates the segment's road condition and rewires the edge:
// blocked removes it, anything else (re)installs it with the new weight.
func (n *Network) SetCondition(from, to string, c Condition) (*Segment, error) {
	seg, ok := n.segments[Pair{from, to}]
	if !ok {
		return nil, ErrSegmentNotFound
	}
	seg.Condition = c
	seg.LastUpdated = time.Now()
	if c.Blocked() {
		delete(n.adj[from], to)
	} else {
		n.adj[from][to] = seg
	}
	return seg, nil
}

// SetTraffic updates the segment's traffic level. The edge weight follows
// EffectiveTime automatically since edges reference the segment.
func (n *Network) SetTraffic(from, to string, t Traffic) (*Segment, error) {
	seg, ok := n.segments[Pair{from, to}]
	if !ok {
		return nil, ErrSegmentNotFound
	}
	seg.Traffic = t
	seg.LastUpdated = time.Now()
	return seg, nil
}

// Segment returns the record for the ordered pair, including blocked ones.
func (n *Network) Segment(from, to string) (*Segment, bool) {
	seg, ok := n.segments[Pair{from, to}]
	return seg, ok
}

// HasNode reports whether the node id is known.
func (n *Network) HasNode(id string) bool {
	_, ok := n.nodes[id]
	return ok
}

// Node returns the node record for id.
func (n *Network) Node(id string) (Node, bool) {
	nd, ok := n.nodes[id]
	return nd, ok
}

// Segments iterates all segment records, passable or not.
func (n *Network) Segments(fn func(*Segment)) {
	for _, seg := range n.segments {
		fn(seg)
	}
}

// SegmentCount returns the number of segment records.
func (n *Network) SegmentCount() int { return len(n.segments) }

// Copy produces an independent network without the excluded nodes. Segment
// records are cloned so snapshot users never alias engine state.
func (n *Network) Copy(exclude map[string]bool) *Network {
	out := New()
	for id, node := range n.nodes {
		if exclude[id] {
			continue
		}
		out.AddNode(node)
	}
	for p, seg := range n.segments {
		if exclude[p.From] || exclude[p.To] {
			continue
		}
		dup := *seg
		out.segments[p] = &dup
		if dup.Passable() {
			out.adj[p.From][p.To] = &dup
		}
	}
	return out
}

// DropEdge removes the edge and its record; used on query copies when
// computing edge-disjoint alternatives.
func (n *Network) DropEdge(from, to string) {
	delete(n.segments, Pair{from, to})
	if m := n.adj[from]; m != nil {
		delete(m, to)
	}
}
