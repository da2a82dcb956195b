package analyzer

import (
	"github.com/seerlab/haruspex/internal/bytecode"
	"github.com/seerlab/haruspex/internal/cfg"
	"github.com/seerlab/haruspex/pkg/models"
)

// modified computes the nesting-weighted complexity variant: each
// conditional branch counts its nesting depth instead of 1, boolean
// combinators add 1 each, switches and catches count as in cyclomatic.
//
// Nesting depth is recovered from graph structure rather than source
// syntax. A conditional C encloses block X when C strictly dominates X and
// X does not post-dominate C: control must pass through C to reach X, and
// taking C's other arm can bypass X. Sequential branches fail the second
// test, so they do not inflate each other's depth.
func modified(g *cfg.Graph, s *bytecode.Stream, points []models.DecisionPoint) int {
	idom := cfg.Dominators(g)
	pdom := cfg.PostDominators(g)

	blockOf := make(map[int]int)
	var condBlocks []int
	for _, b := range g.Blocks {
		for _, off := range b.Offsets {
			blockOf[off] = b.ID
		}
		if in, ok := s.At(b.Last()); ok && in.Class == bytecode.ClassCondBranch {
			condBlocks = append(condBlocks, b.ID)
		}
	}

	depth := func(id int) int {
		d := 1
		for _, c := range condBlocks {
			if c == id {
				continue
			}
			if cfg.StrictlyDominates(idom, c, id) && !cfg.StrictlyDominates(pdom, id, c) {
				d++
			}
		}
		return d
	}

	v := 1
	for _, p := range points {
		switch p.Kind {
		case models.DecisionCondBranch:
			v += depth(blockOf[p.Offset])
		case models.DecisionSwitchCase:
			v += p.BranchCount
		case models.DecisionCatch, models.DecisionBoolOp:
			v++
		}
	}
	return v
}
