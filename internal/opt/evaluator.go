package opt

import (
	"fmt"

	"github.com/Kumar-s75/DisasterOps/internal/model"
	"github.com/Kumar-s75/DisasterOps/internal/network"
)

// Inputs is the read-only snapshot an optimizer run operates on. Lookup
// maps are built once so evaluation never scans the center/zone slices.
type Inputs struct {
	Centers []model.ReliefCenter
	Zones   []model.DisasterZone
	Network *network.Network

	centersByID map[string]*model.ReliefCenter
	zonesByID   map[string]*model.DisasterZone
}

// NewInputs indexes the snapshot and rejects empty problems up front.
func NewInputs(centers []model.ReliefCenter, zones []model.DisasterZone, net *network.Network) (*Inputs, error) {
	if len(centers) == 0 {
		return nil, fmt.Errorf("no relief centers")
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("no disaster zones")
	}
	if net == nil {
		return nil, fmt.Errorf("nil network")
	}
	in := &Inputs{
		Centers:     centers,
		Zones:       zones,
		Network:     net,
		centersByID: make(map[string]*model.ReliefCenter, len(centers)),
		zonesByID:   make(map[string]*model.DisasterZone, len(zones)),
	}
	for i := range centers {
		in.centersByID[centers[i].Location.ID] = &centers[i]
	}
	for i := range zones {
		in.zonesByID[zones[i].Location.ID] = &zones[i]
	}
	return in, nil
}

// FitnessConfig exposes the aggregate-fitness weights and the penalty
// applied to unreachable (zone, center) pairs. Optimizers weight cost and
// coverage differently, so none of this is hardcoded in the search loops.
type FitnessConfig struct {
	CoverageWeight     float64
	EfficiencyWeight   float64
	DistanceWeight     float64
	UnreachablePenalty float64
}

// DefaultFitness mirrors the reference weighting 0.5/0.3/0.2.
func DefaultFitness() FitnessConfig {
	return FitnessConfig{
		CoverageWeight:     0.5,
		EfficiencyWeight:   0.3,
		DistanceWeight:     0.2,
		UnreachablePenalty: 1000,
	}
}

// Evaluator computes fitness, cost, and objective tuples for assignments
// against one snapshot. Shortest-path distances are memoized per (center,
// zone) pair; the snapshot never changes during a run.
type Evaluator struct {
	in   *Inputs
	dist map[network.Pair]float64
}

func NewEvaluator(in *Inputs) *Evaluator {
	return &Evaluator{in: in, dist: map[network.Pair]float64{}}
}

// distance returns the time-weighted shortest path length from center to
// zone, or +Inf when unreachable.
func (e *Evaluator) distance(centerID, zoneID string) float64 {
	key := network.Pair{From: centerID, To: zoneID}
	if d, ok := e.dist[key]; ok {
		return d
	}
	d := network.Unreachable()
	if p, ok := e.in.Network.ShortestPath(centerID, zoneID, network.ByTime); ok {
		d = p.Cost
	}
	e.dist[key] = d
	return d
}

// checkComplete enforces the assignment completeness invariant: every zone
// id exactly once, every center id known.
func (e *Evaluator) checkComplete(a model.Assignment) error {
	if len(a) != len(e.in.Zones) {
		return fmt.Errorf("assignment covers %d zones, want %d", len(a), len(e.in.Zones))
	}
	for zoneID, centerID := range a {
		if _, ok := e.in.zonesByID[zoneID]; !ok {
			return fmt.Errorf("assignment references unknown zone %s", zoneID)
		}
		if _, ok := e.in.centersByID[centerID]; !ok {
			return fmt.Errorf("assignment references unknown center %s", centerID)
		}
	}
	return nil
}

// resourceMatch is the fraction of the zone's needed resources the center
// can fully cover. Zero needs count as a full match.
func resourceMatch(center *model.ReliefCenter, zone *model.DisasterZone) float64 {
	matched := 0
	for _, need := range zone.ResourcesNeeded {
		if have, ok := center.Resource(need.ID); ok && have.Quantity >= need.Quantity {
			matched++
		}
	}
	denom := len(zone.ResourcesNeeded)
	if denom < 1 {
		denom = 1
	}
	return float64(matched) / float64(denom)
}

// Fitness is the single-objective aggregate: weighted coverage and resource
// efficiency minus weighted total distance. Unreachable pairs contribute
// the configured penalty distance instead of failing.
func (e *Evaluator) Fitness(a model.Assignment, cfg FitnessConfig) (float64, error) {
	if err := e.checkComplete(a); err != nil {
		return 0, err
	}
	var totalDistance, coverage, efficiency float64
	for zoneID, centerID := range a {
		zone := e.in.zonesByID[zoneID]
		center := e.in.centersByID[centerID]
		d := e.distance(centerID, zoneID)
		if d == network.Unreachable() {
			totalDistance += cfg.UnreachablePenalty
			continue
		}
		totalDistance += d
		match := resourceMatch(center, zone)
		coverage += float64(zone.Priority) / 5.0 * match
		efficiency += match
	}
	return coverage*cfg.CoverageWeight + efficiency*cfg.EfficiencyWeight - totalDistance*cfg.DistanceWeight, nil
}

// Cost is the annealing objective: priority-weighted distance where high
// priority shrinks the multiplier, (6-priority)/5. Unreachable pairs cost
// the given penalty outright.
func (e *Evaluator) Cost(a model.Assignment, unreachablePenalty float64) (float64, error) {
	if err := e.checkComplete(a); err != nil {
		return 0, err
	}
	total := 0.0
	for zoneID, centerID := range a {
		d := e.distance(centerID, zoneID)
		if d == network.Unreachable() {
			total += unreachablePenalty
			continue
		}
		zone := e.in.zonesByID[zoneID]
		total += d * float64(6-zone.Priority) / 5.0
	}
	return total, nil
}

// Objectives returns the multi-objective tuple (cost, -coverage, -speed).
// Coverage and speed are negated so every objective is minimized.
func (e *Evaluator) Objectives(a model.Assignment, unreachablePenalty float64) ([3]float64, error) {
	if err := e.checkComplete(a); err != nil {
		return [3]float64{}, err
	}
	var cost, coverage, speed float64
	for zoneID, centerID := range a {
		zone := e.in.zonesByID[zoneID]
		center := e.in.centersByID[centerID]
		d := e.distance(centerID, zoneID)
		if d == network.Unreachable() {
			cost += unreachablePenalty
			continue
		}
		cost += d
		coverage += resourceMatch(center, zone) * float64(zone.Priority)
		speed += 1.0 / (1.0 + d)
	}
	return [3]float64{cost, -coverage, -speed}, nil
}

// routeCost sums plain shortest-path distances for solution reporting.
func (e *Evaluator) routeCost(a model.Assignment, unreachablePenalty float64) float64 {
	total := 0.0
	for zoneID, centerID := range a {
		d := e.distance(centerID, zoneID)
		if d == network.Unreachable() {
			d = unreachablePenalty
		}
		total += d
	}
	return total
}
