package models

import "time"

// ClassComplexity aggregates method results for one class.
type ClassComplexity struct {
	ClassName string `json:"class"`

	Methods        int     `json:"methods"`
	FailedMethods  int     `json:"failed_methods"`
	SumCyclomatic  int     `json:"sum_cyclomatic"`
	MeanCyclomatic float64 `json:"mean_cyclomatic"`
	MaxCyclomatic  int     `json:"max_cyclomatic"`
	MaxCognitive   int     `json:"max_cognitive"`
}

// ReportSummary provides codebase-level aggregate statistics. Failed
// methods are reported alongside successful totals, never silently
// excluded.
type ReportSummary struct {
	TotalClasses  int               `json:"total_classes"`
	TotalMethods  int               `json:"total_methods"`
	FailedMethods int               `json:"failed_methods"`
	AvgCyclomatic float64           `json:"avg_cyclomatic"`
	AvgCognitive  float64           `json:"avg_cognitive"`
	MaxCyclomatic int               `json:"max_cyclomatic"`
	MaxCognitive  int               `json:"max_cognitive"`
	P50Cyclomatic int               `json:"p50_cyclomatic"`
	P90Cyclomatic int               `json:"p90_cyclomatic"`
	P95Cyclomatic int               `json:"p95_cyclomatic"`
	RiskCounts    map[RiskLevel]int `json:"risk_counts"`
}

// Report is the full aggregated analysis of one archive.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	Classes     []ClassComplexity `json:"classes"`
	Methods     []MethodResult    `json:"methods"`
	Hotspots    []Hotspot         `json:"hotspots,omitempty"`
	Summary     ReportSummary     `json:"summary"`
}
