package predict

import (
	"math/rand"
	"sort"
	"time"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// Demand score weights and the inclusion/urgency thresholds.
const (
	severityWeight   = 0.6
	populationWeight = 0.4
	hotspotThreshold = 5.0
	highUrgency      = 7.0
)

// Per-person resource ratios, scaled by severity/10.
const (
	foodRatio      = 0.3
	waterRatio     = 0.5
	medicalRatio   = 0.1
	blanketRatio   = 0.2
	bottlesPerHead = 3
)

// Predictor scores disaster zones for anticipated demand. The model is a
// weighted severity/population heuristic with a small random perturbation;
// inject a seeded source for reproducible output.
type Predictor struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Predictor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Predictor{rng: rng}
}

// Hotspots returns the zones whose demand score clears the threshold,
// highest score first. Scores above the high-urgency cutoff are tagged
// "high", the rest "medium".
func (p *Predictor) Hotspots(zones []*model.DisasterZone) []model.Hotspot {
	var out []model.Hotspot
	for _, z := range zones {
		jitter := 0.8 + p.rng.Float64()*0.4
		score := (float64(z.Severity)*severityWeight + float64(z.PopulationAffected)/1000*populationWeight) * jitter
		if score <= hotspotThreshold {
			continue
		}
		urgency := "medium"
		if score > highUrgency {
			urgency = "high"
		}
		out = append(out, model.Hotspot{
			ZoneID:               z.Location.ID,
			PredictedDemandScore: score,
			RecommendedResources: resourceNeeds(z.Severity, z.PopulationAffected),
			UrgencyLevel:         urgency,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PredictedDemandScore != out[j].PredictedDemandScore {
			return out[i].PredictedDemandScore > out[j].PredictedDemandScore
		}
		return out[i].ZoneID < out[j].ZoneID
	})
	return out
}

// resourceNeeds estimates per-zone quantities from population coverage
// ratios scaled by severity.
func resourceNeeds(severity, population int) map[string]int {
	mult := float64(severity) / 10
	pop := float64(population)
	return map[string]int{
		"food_packages": int(pop * foodRatio * mult),
		"water_bottles": int(pop * waterRatio * mult * bottlesPerHead),
		"medical_kits":  int(pop * medicalRatio * mult),
		"blankets":      int(pop * blanketRatio * mult),
	}
}
