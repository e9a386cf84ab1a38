package opt

import (
	"math/rand"
	"testing"
)

func TestSAConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SAConfig)
	}{
		{"zero initial temp", func(c *SAConfig) { c.InitialTemp = 0 }},
		{"cooling rate one", func(c *SAConfig) { c.CoolingRate = 1 }},
		{"cooling rate zero", func(c *SAConfig) { c.CoolingRate = 0 }},
		{"min temp above initial", func(c *SAConfig) { c.MinTemp = c.InitialTemp * 2 }},
		{"zero penalty", func(c *SAConfig) { c.UnreachablePenalty = 0 }},
	}
	for _, tc := range cases {
		cfg := DefaultSAConfig()
		tc.mutate(&cfg)
		if _, err := NewAnnealingOptimizer(cfg, rand.New(rand.NewSource(1))); err == nil {
			t.Errorf("%s: expected construction to fail", tc.name)
		}
	}
}

func TestSANeverWorseThanInitialSolution(t *testing.T) {
	in := testProblem(t)
	cfg := DefaultSAConfig()

	for seed := int64(1); seed <= 5; seed++ {
		// The optimizer's first draw from the source is its initial
		// assignment; reproduce it to get the starting cost.
		rng := rand.New(rand.NewSource(seed))
		eval := NewEvaluator(in)
		initialCost, err := eval.Cost(randomAssignment(in, rng), cfg.UnreachablePenalty)
		if err != nil {
			t.Fatalf("Cost: %v", err)
		}

		sa, err := NewAnnealingOptimizer(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("NewAnnealingOptimizer: %v", err)
		}
		sol, err := sa.OptimizeAllocation(in)
		if err != nil {
			t.Fatalf("OptimizeAllocation: %v", err)
		}
		if sol.TotalCost > initialCost {
			t.Fatalf("seed %d: best cost %v worse than initial %v", seed, sol.TotalCost, initialCost)
		}
	}
}

func TestSAIsReproducibleWithSeed(t *testing.T) {
	in := testProblem(t)
	run := func() float64 {
		sa, err := NewAnnealingOptimizer(DefaultSAConfig(), rand.New(rand.NewSource(99)))
		if err != nil {
			t.Fatalf("NewAnnealingOptimizer: %v", err)
		}
		sol, err := sa.OptimizeAllocation(in)
		if err != nil {
			t.Fatalf("OptimizeAllocation: %v", err)
		}
		return sol.TotalCost
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("seeded runs diverged: %v vs %v", a, b)
	}
}
