package opt

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// newSolution packs an assignment into the immutable result form, with one
// route per zone in deterministic order.
func newSolution(a model.Assignment, algo string, totalCost, coverage, timeEff float64) model.AllocationSolution {
	zoneIDs := make([]string, 0, len(a))
	for z := range a {
		zoneIDs = append(zoneIDs, z)
	}
	sort.Strings(zoneIDs)
	routes := make([]model.RoutePair, 0, len(a))
	for _, z := range zoneIDs {
		routes = append(routes, model.RoutePair{CenterID: a[z], ZoneID: z})
	}
	return model.AllocationSolution{
		ID:             uuid.NewString(),
		Allocations:    map[string]map[string]int{},
		Routes:         routes,
		TotalCost:      totalCost,
		CoverageScore:  coverage,
		TimeEfficiency: timeEff,
		Algorithm:      algo,
	}
}

// randomAssignment assigns every zone a uniformly random center.
func randomAssignment(in *Inputs, rng *rand.Rand) model.Assignment {
	a := make(model.Assignment, len(in.Zones))
	for i := range in.Zones {
		c := in.Centers[rng.Intn(len(in.Centers))]
		a[in.Zones[i].Location.ID] = c.Location.ID
	}
	return a
}
