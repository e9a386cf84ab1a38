package model

// Core domain types shared across the allocation and routing subsystems.

// Location is an immutable point on the map. Kind distinguishes supply
// centers, demand zones, and plain transit nodes.
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Kind string  `json:"type"` // relief_center, disaster_zone, transit
}

const (
	KindReliefCenter = "relief_center"
	KindDisasterZone = "disaster_zone"
	KindTransit      = "transit"
)

// Resource is a stock line item. Quantity is decremented only through an
// explicit allocation and never goes negative.
type Resource struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// ReliefCenter owns its resource stock exclusively.
type ReliefCenter struct {
	Location  Location   `json:"location"`
	Resources []Resource `json:"resources"`
	Capacity  int        `json:"capacity"`
}

// Resource returns the center's stock entry for id, if any.
func (c *ReliefCenter) Resource(id string) (*Resource, bool) {
	for i := range c.Resources {
		if c.Resources[i].ID == id {
			return &c.Resources[i], true
		}
	}
	return nil, false
}

// DisasterZone describes a demand site. Severity is 1-10, Priority is 1-5
// with 5 the most urgent.
type DisasterZone struct {
	Location           Location   `json:"location"`
	Severity           int        `json:"severity"`
	PopulationAffected int        `json:"populationAffected"`
	ResourcesNeeded    []Resource `json:"resourcesNeeded"`
	Priority           int        `json:"priority"`
}

// Assignment maps each disaster-zone id to the relief-center id serving it.
// Optimizers search over these; every zone appears exactly once.
type Assignment map[string]string

// Clone returns an independent copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// RoutePair is one chosen (center, zone) delivery leg of a solution.
type RoutePair struct {
	CenterID string `json:"centerId"`
	ZoneID   string `json:"zoneId"`
}

// AllocationSolution is the immutable result of one optimizer run.
type AllocationSolution struct {
	ID             string                    `json:"id"`
	Allocations    map[string]map[string]int `json:"allocations"` // centerId -> resourceId -> qty
	Routes         []RoutePair               `json:"routes"`
	TotalCost      float64                   `json:"totalCost"`
	CoverageScore  float64                   `json:"coverageScore"`
	TimeEfficiency float64                   `json:"timeEfficiency"`
	Algorithm      string                    `json:"algorithm"`
}

// AllocationResult is one leg of the greedy exact allocation: the chosen
// center, the fully covered zone, and the concrete delivery path.
type AllocationResult struct {
	ReliefCenterID        string     `json:"reliefCenterId"`
	DisasterZoneID        string     `json:"disasterZoneId"`
	ResourcesAllocated    []Resource `json:"resourcesAllocated"`
	Route                 []GeoPoint `json:"route"`
	EstimatedDeliveryTime float64    `json:"estimatedDeliveryTime"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Connection is the wire form used to seed the routing network.
type Connection struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
	Time     float64 `json:"time,omitempty"`
}

// Hotspot is a predicted high-demand zone.
type Hotspot struct {
	ZoneID               string         `json:"zoneId"`
	PredictedDemandScore float64        `json:"predictedDemandScore"`
	RecommendedResources map[string]int `json:"recommendedResources"`
	UrgencyLevel         string         `json:"urgencyLevel"`
}
