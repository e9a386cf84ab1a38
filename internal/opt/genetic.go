package opt

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// GAConfig controls the genetic search. Every knob is caller-settable and
// validated up front.
type GAConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteFraction  float64
	Fitness        FitnessConfig
}

func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.1,
		TournamentSize: 3,
		EliteFraction:  0.1,
		Fitness:        DefaultFitness(),
	}
}

func (c GAConfig) validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population size must be positive, got %d", c.PopulationSize)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("generations must be positive, got %d", c.Generations)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1], got %v", c.MutationRate)
	}
	if c.TournamentSize <= 0 {
		return fmt.Errorf("tournament size must be positive, got %d", c.TournamentSize)
	}
	if c.EliteFraction < 0 || c.EliteFraction >= 1 {
		return fmt.Errorf("elite fraction must be in [0,1), got %v", c.EliteFraction)
	}
	if c.Fitness.UnreachablePenalty <= 0 {
		return fmt.Errorf("unreachable penalty must be positive, got %v", c.Fitness.UnreachablePenalty)
	}
	return nil
}

// GeneticOptimizer evolves a population of assignments. The random source
// is injected so runs are reproducible under test.
type GeneticOptimizer struct {
	cfg GAConfig
	rng *rand.Rand
}

func NewGeneticOptimizer(cfg GAConfig, rng *rand.Rand) (*GeneticOptimizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	return &GeneticOptimizer{cfg: cfg, rng: rng}, nil
}

// OptimizeAllocation runs the full generational loop and returns the best
// assignment ever observed, not merely the final generation's best.
func (g *GeneticOptimizer) OptimizeAllocation(in *Inputs) (model.AllocationSolution, error) {
	eval := NewEvaluator(in)

	population := make([]model.Assignment, g.cfg.PopulationSize)
	for i := range population {
		population[i] = randomAssignment(in, g.rng)
	}

	var best model.Assignment
	bestFitness := math.Inf(-1)

	for gen := 0; gen < g.cfg.Generations; gen++ {
		scores := make([]float64, len(population))
		for i, ind := range population {
			f, err := eval.Fitness(ind, g.cfg.Fitness)
			if err != nil {
				return model.AllocationSolution{}, err
			}
			scores[i] = f
			if f > bestFitness {
				bestFitness = f
				best = ind.Clone()
			}
		}
		population = g.evolve(population, scores, in)
	}

	totalCost := eval.routeCost(best, g.cfg.Fitness.UnreachablePenalty)
	timeEff := 1.0 / (1.0 + totalCost/float64(len(best)))
	return newSolution(best, "genetic", totalCost, bestFitness, timeEff), nil
}

// evolve applies elitism, tournament selection, uniform crossover, and
// population-bounded mutation.
func (g *GeneticOptimizer) evolve(population []model.Assignment, scores []float64, in *Inputs) []model.Assignment {
	next := make([]model.Assignment, 0, len(population))

	eliteCount := int(g.cfg.EliteFraction * float64(len(population)))
	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	for _, idx := range order[:eliteCount] {
		next = append(next, population[idx].Clone())
	}

	for len(next) < len(population) {
		p1 := g.tournament(population, scores)
		p2 := g.tournament(population, scores)
		child := g.crossover(p1, p2)
		if g.rng.Float64() < g.cfg.MutationRate {
			child = g.mutate(child, population)
		}
		next = append(next, child)
	}
	return next
}

// tournament samples distinct individuals and keeps the fittest.
func (g *GeneticOptimizer) tournament(population []model.Assignment, scores []float64) model.Assignment {
	size := g.cfg.TournamentSize
	if size > len(population) {
		size = len(population)
	}
	bestIdx := -1
	for _, idx := range g.rng.Perm(len(population))[:size] {
		if bestIdx == -1 || scores[idx] > scores[bestIdx] {
			bestIdx = idx
		}
	}
	return population[bestIdx]
}

// crossover copies each zone's assignment from one of the two parents,
// chosen independently per zone. Zones are visited in sorted order so a
// seeded run is reproducible.
func (g *GeneticOptimizer) crossover(p1, p2 model.Assignment) model.Assignment {
	zoneIDs := make([]string, 0, len(p1))
	for z := range p1 {
		zoneIDs = append(zoneIDs, z)
	}
	sort.Strings(zoneIDs)
	child := make(model.Assignment, len(p1))
	for _, zoneID := range zoneIDs {
		if g.rng.Intn(2) == 0 {
			child[zoneID] = p1[zoneID]
		} else {
			child[zoneID] = p2[zoneID]
		}
	}
	return child
}

// mutate reassigns 1-2 random zones, drawing replacements only from centers
// some individual in the population already uses for that zone. That keeps
// mutation inside historically tried alternatives.
func (g *GeneticOptimizer) mutate(ind model.Assignment, population []model.Assignment) model.Assignment {
	mutated := ind.Clone()
	zoneIDs := make([]string, 0, len(ind))
	for z := range ind {
		zoneIDs = append(zoneIDs, z)
	}
	sort.Strings(zoneIDs)

	for n := 1 + g.rng.Intn(2); n > 0; n-- {
		zoneID := zoneIDs[g.rng.Intn(len(zoneIDs))]
		seen := map[string]bool{}
		candidates := []string{}
		for _, other := range population {
			if c, ok := other[zoneID]; ok && !seen[c] {
				seen[c] = true
				candidates = append(candidates, c)
			}
		}
		sort.Strings(candidates)
		mutated[zoneID] = candidates[g.rng.Intn(len(candidates))]
	}
	return mutated
}
