package opt

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// SAConfig controls simulated annealing. The unreachable penalty defaults
// higher than the GA's because the acceptance test is cost-ratio sensitive.
type SAConfig struct {
	InitialTemp        float64
	CoolingRate        float64
	MinTemp            float64
	UnreachablePenalty float64
}

func DefaultSAConfig() SAConfig {
	return SAConfig{
		InitialTemp:        1000,
		CoolingRate:        0.95,
		MinTemp:            1,
		UnreachablePenalty: 10000,
	}
}

func (c SAConfig) validate() error {
	if c.InitialTemp <= 0 {
		return fmt.Errorf("initial temperature must be positive, got %v", c.InitialTemp)
	}
	if c.CoolingRate <= 0 || c.CoolingRate >= 1 {
		return fmt.Errorf("cooling rate must be in (0,1), got %v", c.CoolingRate)
	}
	if c.MinTemp <= 0 || c.MinTemp >= c.InitialTemp {
		return fmt.Errorf("min temperature must be in (0, initialTemp), got %v", c.MinTemp)
	}
	if c.UnreachablePenalty <= 0 {
		return fmt.Errorf("unreachable penalty must be positive, got %v", c.UnreachablePenalty)
	}
	return nil
}

// AnnealingOptimizer walks a single solution downhill, occasionally uphill
// while hot. Acceptance is stochastic; inject a seeded source in tests.
type AnnealingOptimizer struct {
	cfg SAConfig
	rng *rand.Rand
}

func NewAnnealingOptimizer(cfg SAConfig, rng *rand.Rand) (*AnnealingOptimizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	return &AnnealingOptimizer{cfg: cfg, rng: rng}, nil
}

// OptimizeAllocation anneals from a random assignment until the temperature
// drops below the minimum. The returned best-seen cost never exceeds the
// initial solution's cost.
func (s *AnnealingOptimizer) OptimizeAllocation(in *Inputs) (model.AllocationSolution, error) {
	eval := NewEvaluator(in)

	current := randomAssignment(in, s.rng)
	currentCost, err := eval.Cost(current, s.cfg.UnreachablePenalty)
	if err != nil {
		return model.AllocationSolution{}, err
	}
	best := current.Clone()
	bestCost := currentCost

	for temp := s.cfg.InitialTemp; temp > s.cfg.MinTemp; temp *= s.cfg.CoolingRate {
		neighbor := s.neighbor(current, in)
		neighborCost, err := eval.Cost(neighbor, s.cfg.UnreachablePenalty)
		if err != nil {
			return model.AllocationSolution{}, err
		}
		if s.accept(currentCost, neighborCost, temp) {
			current = neighbor
			currentCost = neighborCost
			if neighborCost < bestCost {
				best = neighbor.Clone()
				bestCost = neighborCost
			}
		}
	}

	coverage := 1.0 / (1.0 + bestCost)
	timeEff := 1.0 / (1.0 + bestCost/float64(len(best)))
	return newSolution(best, "annealing", bestCost, coverage, timeEff), nil
}

// neighbor reassigns 1-2 random zones to independently random centers.
func (s *AnnealingOptimizer) neighbor(a model.Assignment, in *Inputs) model.Assignment {
	out := a.Clone()
	zoneIDs := make([]string, 0, len(a))
	for z := range a {
		zoneIDs = append(zoneIDs, z)
	}
	sort.Strings(zoneIDs)
	for n := 1 + s.rng.Intn(2); n > 0; n-- {
		zoneID := zoneIDs[s.rng.Intn(len(zoneIDs))]
		out[zoneID] = in.Centers[s.rng.Intn(len(in.Centers))].Location.ID
	}
	return out
}

// accept takes improvements unconditionally and worse moves with
// probability exp(-delta/temp).
func (s *AnnealingOptimizer) accept(currentCost, neighborCost, temp float64) bool {
	if neighborCost < currentCost {
		return true
	}
	return s.rng.Float64() < math.Exp(-(neighborCost-currentCost)/temp)
}
