// Package analyzer computes complexity metrics for JVM methods: cyclomatic,
// nesting-weighted (modified), cognitive, and essential complexity, all
// derived from the bytecode control-flow graph.
package analyzer

import (
	"strings"

	"github.com/seerlab/haruspex/internal/bytecode"
	"github.com/seerlab/haruspex/internal/cfg"
	"github.com/seerlab/haruspex/internal/classfile"
	"github.com/seerlab/haruspex/pkg/models"
)

// Options control per-method analysis.
type Options struct {
	// IncludeGraph attaches the exported control-flow graph to each result.
	IncludeGraph bool
}

// AnalyzeMethod runs the full pipeline for one method: decode, validate
// exception regions, partition into basic blocks, build the graph, and
// compute all four metrics. A failure at any stage produces an error-variant
// result and never aborts the batch.
func AnalyzeMethod(m *classfile.Method, opts Options) *models.MethodResult {
	res := &models.MethodResult{
		ClassName:  strings.ReplaceAll(m.ClassName, "/", "."),
		Name:       m.Name,
		Descriptor: m.Descriptor,
	}

	// Abstract and native methods have no body: a single implicit path.
	if m.Code == nil || len(m.Code.Body) == 0 {
		res.Metrics = models.ComplexityMetrics{Cyclomatic: 1, Modified: 1, Cognitive: 0, Essential: 1}
		res.Risk = models.RiskForCyclomatic(1)
		return res
	}

	stream, err := bytecode.Decode(m.Code.Body)
	if err != nil {
		return fail(res, err)
	}
	if err := bytecode.ValidateRegions(stream, m.Code.Regions); err != nil {
		return fail(res, err)
	}
	blocks, err := cfg.Partition(stream, m.Code.Regions)
	if err != nil {
		return fail(res, err)
	}
	g, err := cfg.Build(stream, blocks, m.Code.Regions)
	if err != nil {
		return fail(res, err)
	}

	points := decisionPoints(stream, m.Code.Regions)
	res.DecisionPoints = points
	res.Metrics.Cyclomatic = cyclomatic(points)
	res.Metrics.Modified = modified(g, stream, points)
	res.Metrics.Cognitive = cognitive(stream, m.Code.Regions)
	res.Metrics.Essential = cfg.Reduce(g).Essential()
	res.Risk = models.RiskForCyclomatic(res.Metrics.Cyclomatic)
	res.UnreachableBlocks = g.Unreachable

	if opts.IncludeGraph {
		res.Graph = exportGraph(res.ID(), stream, g)
	}
	return res
}

func fail(res *models.MethodResult, err error) *models.MethodResult {
	res.Error = err.Error()
	return res
}
