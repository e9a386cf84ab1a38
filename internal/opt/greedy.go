package opt

import (
	"math"
	"sort"

	"github.com/Kumar-s75/DisasterOps/internal/model"
	"github.com/Kumar-s75/DisasterOps/internal/network"
)

// GreedyAllocate is the exact allocation routine: zones are served in
// priority order, each by the nearest center that can fully cover every
// needed resource. Chosen centers have their stock decremented in place,
// so later zones see the depleted quantities. A zone no center can fully
// serve is skipped, not an error; feasibility is best-effort here too.
func GreedyAllocate(centers []*model.ReliefCenter, zones []model.DisasterZone, net *network.Network) []model.AllocationResult {
	sorted := append([]model.DisasterZone(nil), zones...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	results := []model.AllocationResult{}
	for _, zone := range sorted {
		var bestCenter *model.ReliefCenter
		var bestPath network.Path
		bestTime := math.Inf(1)

		for _, center := range centers {
			if !canFulfill(center, zone) {
				continue
			}
			path, ok := net.ShortestPath(center.Location.ID, zone.Location.ID, network.ByTime)
			if !ok {
				continue
			}
			if path.Cost < bestTime {
				bestTime = path.Cost
				bestCenter = center
				bestPath = path
			}
		}
		if bestCenter == nil {
			continue
		}

		allocated := make([]model.Resource, len(zone.ResourcesNeeded))
		copy(allocated, zone.ResourcesNeeded)
		for _, need := range zone.ResourcesNeeded {
			if have, ok := bestCenter.Resource(need.ID); ok {
				have.Quantity -= need.Quantity
				if have.Quantity < 0 {
					have.Quantity = 0
				}
			}
		}

		results = append(results, model.AllocationResult{
			ReliefCenterID:        bestCenter.Location.ID,
			DisasterZoneID:        zone.Location.ID,
			ResourcesAllocated:    allocated,
			Route:                 pathCoords(net, bestPath),
			EstimatedDeliveryTime: bestTime,
		})
	}
	return results
}

func canFulfill(center *model.ReliefCenter, zone model.DisasterZone) bool {
	for _, need := range zone.ResourcesNeeded {
		have, ok := center.Resource(need.ID)
		if !ok || have.Quantity < need.Quantity {
			return false
		}
	}
	return true
}

func pathCoords(net *network.Network, p network.Path) []model.GeoPoint {
	coords := make([]model.GeoPoint, 0, len(p.Nodes))
	for _, id := range p.Nodes {
		if nd, ok := net.Node(id); ok {
			coords = append(coords, model.GeoPoint{Lat: nd.Lat, Lng: nd.Lng})
		}
	}
	return coords
}
