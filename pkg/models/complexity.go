package models

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// RiskLevel grades a method by its cyclomatic complexity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very-high"
)

// Fixed cyclomatic thresholds for risk grading.
const (
	RiskLowMax      = 10
	RiskModerateMax = 20
	RiskHighMax     = 40
)

// RiskForCyclomatic maps a cyclomatic value onto a risk level.
func RiskForCyclomatic(cyclomatic int) RiskLevel {
	switch {
	case cyclomatic <= RiskLowMax:
		return RiskLow
	case cyclomatic <= RiskModerateMax:
		return RiskModerate
	case cyclomatic <= RiskHighMax:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// DecisionPointKind labels what kind of construct contributed a decision.
type DecisionPointKind string

const (
	DecisionCondBranch DecisionPointKind = "conditional-branch"
	DecisionSwitchCase DecisionPointKind = "switch-case"
	DecisionCatch      DecisionPointKind = "catch-clause"
	DecisionBoolOp     DecisionPointKind = "boolean-operator"
)

// DecisionPoint is a single complexity-contributing location. BranchCount is
// the number of distinct successors it contributes: 1 for a conditional, N
// for an N-way switch (default included), 1 per catch clause.
type DecisionPoint struct {
	Offset      int               `json:"offset"`
	Kind        DecisionPointKind `json:"kind"`
	BranchCount int               `json:"branch_count"`
}

// ComplexityMetrics holds the four scalar results for one method.
type ComplexityMetrics struct {
	Cyclomatic int `json:"cyclomatic"`
	Modified   int `json:"modified"`
	Cognitive  int `json:"cognitive"`
	Essential  int `json:"essential"`
}

// MethodResult is the per-method analysis outcome. When Error is non-empty
// the numeric fields are meaningless; callers must check Failed first.
type MethodResult struct {
	ClassName  string `json:"class"`
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`

	Metrics        ComplexityMetrics `json:"metrics"`
	DecisionPoints []DecisionPoint   `json:"decision_points,omitempty"`
	Risk           RiskLevel         `json:"risk"`

	// UnreachableBlocks lists start offsets of blocks with no path from
	// the method entry: intra-method dead code.
	UnreachableBlocks []int `json:"unreachable_blocks,omitempty"`

	Graph *CFGView `json:"cfg,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether analysis of this method was aborted.
func (m *MethodResult) Failed() bool { return m.Error != "" }

// ID returns the stable method identifier used to correlate results.
func (m *MethodResult) ID() string {
	return m.ClassName + "." + m.Name + m.Descriptor
}

// Fingerprint hashes the result into a stable 64-bit digest. Two runs over
// the same method body must produce identical fingerprints.
func (m *MethodResult) Fingerprint() uint64 {
	var sb strings.Builder
	sb.WriteString(m.ID())
	if m.Failed() {
		sb.WriteString("|err:")
		sb.WriteString(m.Error)
		return xxhash.Sum64String(sb.String())
	}
	fmt.Fprintf(&sb, "|%d|%d|%d|%d|%s", m.Metrics.Cyclomatic, m.Metrics.Modified,
		m.Metrics.Cognitive, m.Metrics.Essential, m.Risk)
	for _, dp := range m.DecisionPoints {
		fmt.Fprintf(&sb, "|%d:%s:%d", dp.Offset, dp.Kind, dp.BranchCount)
	}
	for _, off := range m.UnreachableBlocks {
		fmt.Fprintf(&sb, "|u%d", off)
	}
	return xxhash.Sum64String(sb.String())
}
