package network

import (
	"fmt"
	"math"
	"strings"
)

// Condition is a road-condition tag carrying its travel-time multiplier.
// Blocked carries +Inf; a blocked segment keeps its record but loses its
// graph edge.
type Condition struct {
	Name   string
	Factor float64
}

var (
	ConditionExcellent = Condition{"EXCELLENT", 1.0}
	ConditionGood      = Condition{"GOOD", 1.2}
	ConditionFair      = Condition{"FAIR", 1.5}
	ConditionPoor      = Condition{"POOR", 2.0}
	ConditionDamaged   = Condition{"DAMAGED", 3.0}
	ConditionBlocked   = Condition{"BLOCKED", math.Inf(1)}
)

var conditions = []Condition{
	ConditionExcellent, ConditionGood, ConditionFair,
	ConditionPoor, ConditionDamaged, ConditionBlocked,
}

// Blocked reports whether the tag is the impassable sentinel. The check is
// by name, not by comparing the infinite factor.
func (c Condition) Blocked() bool { return c.Name == ConditionBlocked.Name }

// ParseCondition resolves a case-insensitive condition name.
func ParseCondition(s string) (Condition, error) {
	for _, c := range conditions {
		if strings.EqualFold(s, c.Name) {
			return c, nil
		}
	}
	return Condition{}, fmt.Errorf("unknown road condition: %s", s)
}

// Traffic is a congestion tag carrying its travel-time multiplier.
type Traffic struct {
	Name   string
	Factor float64
}

var (
	TrafficLight    = Traffic{"LIGHT", 1.0}
	TrafficModerate = Traffic{"MODERATE", 1.3}
	TrafficHeavy    = Traffic{"HEAVY", 1.8}
	TrafficSevere   = Traffic{"SEVERE", 2.5}
)

var trafficLevels = []Traffic{TrafficLight, TrafficModerate, TrafficHeavy, TrafficSevere}

// ParseTraffic resolves a case-insensitive traffic level name.
func ParseTraffic(s string) (Traffic, error) {
	for _, t := range trafficLevels {
		if strings.EqualFold(s, t.Name) {
			return t, nil
		}
	}
	return Traffic{}, fmt.Errorf("unknown traffic level: %s", s)
}

// TrafficLevels returns the closed set of traffic tags, lightest first.
func TrafficLevels() []Traffic { return append([]Traffic(nil), trafficLevels...) }

// DegradedConditions returns the non-blocked impaired tags, used by the
// incident simulator.
func DegradedConditions() []Condition { return []Condition{ConditionPoor, ConditionDamaged} }
