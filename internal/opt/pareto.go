package opt

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// ParetoConfig controls the multi-objective search over (cost, coverage,
// speed). Coverage and speed are negated internally so all three objectives
// minimize uniformly.
type ParetoConfig struct {
	PopulationSize     int
	Generations        int
	UnreachablePenalty float64
}

func DefaultParetoConfig() ParetoConfig {
	return ParetoConfig{PopulationSize: 50, Generations: 100, UnreachablePenalty: 1000}
}

func (c ParetoConfig) validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population size must be positive, got %d", c.PopulationSize)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("generations must be positive, got %d", c.Generations)
	}
	if c.UnreachablePenalty <= 0 {
		return fmt.Errorf("unreachable penalty must be positive, got %v", c.UnreachablePenalty)
	}
	return nil
}

// ParetoOptimizer ranks the population by non-dominated sorting and keeps
// the most spread-out members of an overflowing front.
type ParetoOptimizer struct {
	cfg ParetoConfig
	rng *rand.Rand
}

func NewParetoOptimizer(cfg ParetoConfig, rng *rand.Rand) (*ParetoOptimizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	return &ParetoOptimizer{cfg: cfg, rng: rng}, nil
}

// OptimizeParetoFront returns the final generation's non-dominated set,
// one AllocationSolution per front member. Callers pick among the
// alternatives with their own trade-off policy.
func (p *ParetoOptimizer) OptimizeParetoFront(in *Inputs) ([]model.AllocationSolution, error) {
	eval := NewEvaluator(in)

	population := make([]model.Assignment, p.cfg.PopulationSize)
	for i := range population {
		population[i] = randomAssignment(in, p.rng)
	}

	for gen := 0; gen < p.cfg.Generations; gen++ {
		objectives, err := p.evaluateAll(eval, population)
		if err != nil {
			return nil, err
		}
		fronts := nonDominatedSort(objectives)
		population = p.selectNext(population, objectives, fronts)
	}

	objectives, err := p.evaluateAll(eval, population)
	if err != nil {
		return nil, err
	}
	fronts := nonDominatedSort(objectives)

	out := make([]model.AllocationSolution, 0, len(fronts[0]))
	for _, idx := range fronts[0] {
		obj := objectives[idx]
		a := population[idx]
		out = append(out, newSolution(a, "pareto", obj[0], -obj[1], -obj[2]))
	}
	return out, nil
}

func (p *ParetoOptimizer) evaluateAll(eval *Evaluator, population []model.Assignment) ([][3]float64, error) {
	objectives := make([][3]float64, len(population))
	for i, ind := range population {
		obj, err := eval.Objectives(ind, p.cfg.UnreachablePenalty)
		if err != nil {
			return nil, err
		}
		objectives[i] = obj
	}
	return objectives, nil
}

// selectNext fills the next generation front-by-front; the front that would
// overflow the cap is filtered by crowding distance, keeping the most
// spread-out individuals.
func (p *ParetoOptimizer) selectNext(population []model.Assignment, objectives [][3]float64, fronts [][]int) []model.Assignment {
	next := make([]model.Assignment, 0, p.cfg.PopulationSize)
	for _, front := range fronts {
		if len(next)+len(front) <= p.cfg.PopulationSize {
			for _, idx := range front {
				next = append(next, population[idx])
			}
			continue
		}
		remaining := p.cfg.PopulationSize - len(next)
		frontObjs := make([][3]float64, len(front))
		for i, idx := range front {
			frontObjs[i] = objectives[idx]
		}
		crowd := crowdingDistance(frontObjs)
		order := make([]int, len(front))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return crowd[order[a]] > crowd[order[b]] })
		for i := 0; i < remaining; i++ {
			next = append(next, population[front[order[i]]])
		}
		break
	}
	return next
}

// dominates reports whether a is no worse than b on every objective and
// strictly better on at least one.
func dominates(a, b [3]float64) bool {
	strict := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			strict = true
		}
	}
	return strict
}

// nonDominatedSort partitions indices into ranked fronts by iterative
// peeling: domination counts drop as dominating members of lower fronts are
// processed, and an index joins the next front when its count hits zero.
func nonDominatedSort(objectives [][3]float64) [][]int {
	n := len(objectives)
	dominationCount := make([]int, n)
	dominated := make([][]int, n)
	var first []int

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(objectives[i], objectives[j]) {
				dominated[i] = append(dominated[i], j)
			} else if dominates(objectives[j], objectives[i]) {
				dominationCount[i]++
			}
		}
		if dominationCount[i] == 0 {
			first = append(first, i)
		}
	}

	fronts := [][]int{first}
	for len(fronts[len(fronts)-1]) > 0 {
		var next []int
		for _, i := range fronts[len(fronts)-1] {
			for _, j := range dominated[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		fronts = append(fronts, next)
	}
	return fronts[:len(fronts)-1]
}

// crowdingDistance assigns boundary members infinite distance and interior
// members the normalized gap between their neighbors, summed per objective.
func crowdingDistance(front [][3]float64) []float64 {
	n := len(front)
	distances := make([]float64, n)
	if n == 0 {
		return distances
	}
	for obj := 0; obj < 3; obj++ {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return front[order[a]][obj] < front[order[b]][obj] })
		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)
		span := front[order[n-1]][obj] - front[order[0]][obj]
		if span <= 0 {
			continue
		}
		for i := 1; i < n-1; i++ {
			distances[order[i]] += (front[order[i+1]][obj] - front[order[i-1]][obj]) / span
		}
	}
	return distances
}
