package api

import (
	"fmt"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

type optimizeRequest struct {
	Algorithm      string  `json:"algorithm"`
	Seed           int64   `json:"seed,omitempty"`
	PopulationSize int     `json:"populationSize,omitempty"`
	Generations    int     `json:"generations,omitempty"`
	MutationRate   float64 `json:"mutationRate,omitempty"`
	InitialTemp    float64 `json:"initialTemp,omitempty"`
	CoolingRate    float64 `json:"coolingRate,omitempty"`
}

func validateOptimizeRequest(req *optimizeRequest) error {
	switch req.Algorithm {
	case "", "genetic", "annealing", "pareto", "greedy":
	default:
		return fmt.Errorf("invalid algorithm: %s", req.Algorithm)
	}
	if req.PopulationSize < 0 {
		return fmt.Errorf("populationSize must be >= 0")
	}
	if req.Generations < 0 {
		return fmt.Errorf("generations must be >= 0")
	}
	if req.MutationRate < 0 || req.MutationRate > 1 {
		return fmt.Errorf("mutationRate must be in [0,1]")
	}
	if req.CoolingRate != 0 && (req.CoolingRate <= 0 || req.CoolingRate >= 1) {
		return fmt.Errorf("coolingRate must be in (0,1)")
	}
	if req.InitialTemp < 0 {
		return fmt.Errorf("initialTemp must be >= 0")
	}
	return nil
}

func validateCenter(c *model.ReliefCenter) error {
	if c.Location.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be >= 0")
	}
	for _, r := range c.Resources {
		if r.ID == "" {
			return fmt.Errorf("resource id is required")
		}
		if r.Quantity < 0 {
			return fmt.Errorf("resource %s quantity must be >= 0", r.ID)
		}
	}
	return nil
}

func validateZone(z *model.DisasterZone) error {
	if z.Location.Name == "" {
		return fmt.Errorf("name is required")
	}
	if z.Severity < 1 || z.Severity > 10 {
		return fmt.Errorf("severity must be in [1,10]")
	}
	if z.Priority < 1 || z.Priority > 5 {
		return fmt.Errorf("priority must be in [1,5]")
	}
	if z.PopulationAffected < 0 {
		return fmt.Errorf("populationAffected must be >= 0")
	}
	return nil
}
