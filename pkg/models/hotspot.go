package models

import "fmt"

// Default hotspot thresholds. A method is a hotspot when its cyclomatic or
// cognitive complexity crosses these; a class when its mean method
// cyclomatic does.
const (
	HotspotMethodCyclomatic = 40
	HotspotMethodCognitive  = 15
	HotspotClassMean        = 20.0
)

// Thresholds are the limits above which methods and classes are flagged.
type Thresholds struct {
	MethodCyclomatic int
	MethodCognitive  int
	ClassMean        float64
}

// DefaultThresholds returns the built-in hotspot limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MethodCyclomatic: HotspotMethodCyclomatic,
		MethodCognitive:  HotspotMethodCognitive,
		ClassMean:        HotspotClassMean,
	}
}

// HotspotKind distinguishes method-level from class-level hotspots.
type HotspotKind string

const (
	HotspotMethod HotspotKind = "method"
	HotspotClass  HotspotKind = "class"
)

// Hotspot flags a method or class whose complexity warrants attention,
// with a generated recommendation.
type Hotspot struct {
	Kind           HotspotKind `json:"kind"`
	ClassName      string      `json:"class"`
	Method         string      `json:"method,omitempty"`
	Cyclomatic     int         `json:"cyclomatic,omitempty"`
	Cognitive      int         `json:"cognitive,omitempty"`
	MeanCyclomatic float64     `json:"mean_cyclomatic,omitempty"`
	Recommendation string      `json:"recommendation"`
}

// MethodRecommendation builds the fixed-template advice for a method
// hotspot, keyed by which threshold tripped.
func MethodRecommendation(name string, cyclomatic, cognitive int) string {
	switch {
	case cyclomatic > HotspotMethodCyclomatic && cognitive > HotspotMethodCognitive:
		return fmt.Sprintf("%s has cyclomatic complexity %d and cognitive complexity %d; split it into smaller methods and flatten nested conditionals", name, cyclomatic, cognitive)
	case cyclomatic > HotspotMethodCyclomatic:
		return fmt.Sprintf("%s has cyclomatic complexity %d; extract independent decision paths into helper methods", name, cyclomatic)
	default:
		return fmt.Sprintf("%s has cognitive complexity %d; reduce nesting with early returns or guard clauses", name, cognitive)
	}
}

// ClassRecommendation builds the fixed-template advice for a class hotspot.
func ClassRecommendation(name string, mean float64) string {
	return fmt.Sprintf("%s averages cyclomatic complexity %.1f per method; consider splitting responsibilities across collaborating classes", name, mean)
}
