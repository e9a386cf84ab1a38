package network

import (
	"math"
	"testing"
)

func buildTriangle(t *testing.T) *Network {
	t.Helper()
	n := New()
	n.AddNode(Node{ID: "A", Lat: 0, Lng: 0})
	n.AddNode(Node{ID: "B", Lat: 0, Lng: 1})
	n.AddNode(Node{ID: "C", Lat: 0, Lng: 2})
	for _, e := range []struct {
		from, to string
		d, t     float64
	}{
		{"A", "B", 10, 1}, {"B", "C", 10, 1}, {"A", "C", 50, 5},
	} {
		if _, err := n.AddSegment(e.from, e.to, e.d, e.t); err != nil {
			t.Fatalf("AddSegment(%s,%s): %v", e.from, e.to, err)
		}
	}
	// start from a neutral baseline
	n.Segments(func(s *Segment) { s.Condition = ConditionExcellent })
	return n
}

func TestEffectiveTime(t *testing.T) {
	n := buildTriangle(t)
	if _, err := n.SetCondition("A", "B", ConditionPoor); err != nil {
		t.Fatalf("SetCondition: %v", err)
	}
	if _, err := n.SetTraffic("A", "B", TrafficHeavy); err != nil {
		t.Fatalf("SetTraffic: %v", err)
	}
	seg, _ := n.Segment("A", "B")
	want := 1.0 * 2.0 * 1.8
	if math.Abs(seg.EffectiveTime()-want) > 1e-9 {
		t.Fatalf("effective time = %v, want %v", seg.EffectiveTime(), want)
	}
}

func TestShortestPathPrefersFastRoute(t *testing.T) {
	n := buildTriangle(t)
	p, ok := n.ShortestPath("A", "C", ByTime)
	if !ok {
		t.Fatal("expected a path")
	}
	if len(p.Nodes) != 3 || p.Nodes[1] != "B" {
		t.Fatalf("path = %v, want A-B-C", p.Nodes)
	}
	if math.Abs(p.Cost-2) > 1e-9 {
		t.Fatalf("cost = %v, want 2", p.Cost)
	}
}

func TestBlockedSegmentReroutesAndRestores(t *testing.T) {
	n := buildTriangle(t)
	if _, err := n.SetCondition("B", "C", ConditionBlocked); err != nil {
		t.Fatalf("SetCondition: %v", err)
	}
	p, ok := n.ShortestPath("A", "C", ByTime)
	if !ok {
		t.Fatal("expected fallback path")
	}
	if len(p.Nodes) != 2 || p.Cost != 5 {
		t.Fatalf("path = %v cost=%v, want direct A-C cost 5", p.Nodes, p.Cost)
	}

	// record survives blocking and restoring reinstates the edge
	if seg, ok := n.Segment("B", "C"); !ok || !seg.Condition.Blocked() {
		t.Fatal("blocked segment record should be retained")
	}
	if _, err := n.SetCondition("B", "C", ConditionExcellent); err != nil {
		t.Fatalf("restore: %v", err)
	}
	p, _ = n.ShortestPath("A", "C", ByTime)
	if len(p.Nodes) != 3 {
		t.Fatalf("after restore path = %v, want A-B-C", p.Nodes)
	}
}

func TestDistanceMetricIgnoresConditions(t *testing.T) {
	n := buildTriangle(t)
	if _, err := n.SetTraffic("A", "B", TrafficSevere); err != nil {
		t.Fatalf("SetTraffic: %v", err)
	}
	p, ok := n.ShortestPath("A", "C", ByDistance)
	if !ok {
		t.Fatal("expected a path")
	}
	if math.Abs(p.Cost-20) > 1e-9 {
		t.Fatalf("distance cost = %v, want 20", p.Cost)
	}
}

func TestAStarAgreesWithDijkstra(t *testing.T) {
	n := buildTriangle(t)
	d, _ := n.ShortestPath("A", "C", ByTime)
	a, ok := n.AStarPath("A", "C", ByTime)
	if !ok {
		t.Fatal("expected a path")
	}
	if a.Cost != d.Cost || len(a.Nodes) != len(d.Nodes) {
		t.Fatalf("a* %v (%v) != dijkstra %v (%v)", a.Nodes, a.Cost, d.Nodes, d.Cost)
	}
}

func TestNoPathIsNotAnError(t *testing.T) {
	n := buildTriangle(t)
	if _, ok := n.ShortestPath("C", "A", ByTime); ok {
		t.Fatal("no reverse edges exist; expected ok=false")
	}
	if _, ok := n.ShortestPath("A", "missing", ByTime); ok {
		t.Fatal("unknown node should report no path")
	}
}

func TestUnknownSegmentUpdateLeavesStateUnchanged(t *testing.T) {
	n := buildTriangle(t)
	if _, err := n.SetCondition("A", "X", ConditionBlocked); err != ErrSegmentNotFound {
		t.Fatalf("err = %v, want ErrSegmentNotFound", err)
	}
	if n.SegmentCount() != 3 {
		t.Fatalf("segment count changed to %d", n.SegmentCount())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	n := buildTriangle(t)
	cp := n.Copy(map[string]bool{"B": true})
	if _, ok := cp.ShortestPath("A", "C", ByTime); !ok {
		t.Fatal("copy should keep the direct A-C edge")
	}
	if p, _ := cp.ShortestPath("A", "C", ByTime); len(p.Nodes) != 2 {
		t.Fatalf("copy path = %v, want A-C without B", p.Nodes)
	}
	// mutating the copy must not leak into the original
	cp.DropEdge("A", "C")
	if _, ok := n.Segment("A", "C"); !ok {
		t.Fatal("original lost a segment after copy mutation")
	}
}

func TestParseTags(t *testing.T) {
	if c, err := ParseCondition("blocked"); err != nil || !c.Blocked() {
		t.Fatalf("ParseCondition(blocked) = %v, %v", c, err)
	}
	if _, err := ParseCondition("muddy"); err == nil {
		t.Fatal("expected error for unknown condition")
	}
	if tr, err := ParseTraffic("HEAVY"); err != nil || tr.Factor != 1.8 {
		t.Fatalf("ParseTraffic(HEAVY) = %v, %v", tr, err)
	}
}
