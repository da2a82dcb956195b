package analyzer

import (
	"github.com/seerlab/haruspex/internal/bytecode"
	"github.com/seerlab/haruspex/pkg/models"
)

// decisionPoints collects every complexity-contributing location in the
// method: conditional branches, switches, boolean combinators, and catch
// clauses. The list is shared by the cyclomatic and modified calculators.
func decisionPoints(s *bytecode.Stream, regions []bytecode.ExceptionRegion) []models.DecisionPoint {
	var points []models.DecisionPoint
	for _, in := range s.Instructions {
		switch in.Class {
		case bytecode.ClassCondBranch:
			points = append(points, models.DecisionPoint{
				Offset:      in.Offset,
				Kind:        models.DecisionCondBranch,
				BranchCount: 1,
			})
		case bytecode.ClassTableSwitch, bytecode.ClassLookupSwitch:
			// Cases sharing a target collapse into one arm; the default
			// always counts unless it shares a target with a case.
			points = append(points, models.DecisionPoint{
				Offset:      in.Offset,
				Kind:        models.DecisionSwitchCase,
				BranchCount: len(in.DistinctTargets()),
			})
		case bytecode.ClassBoolOp:
			points = append(points, models.DecisionPoint{
				Offset:      in.Offset,
				Kind:        models.DecisionBoolOp,
				BranchCount: 1,
			})
		}
	}
	for _, r := range regions {
		points = append(points, models.DecisionPoint{
			Offset:      r.HandlerPC,
			Kind:        models.DecisionCatch,
			BranchCount: 1,
		})
	}
	return points
}

// cyclomatic is 1 plus one per conditional branch, one per catch clause, and
// one per distinct switch arm (default included). Boolean combinators do not
// add separate paths at the bytecode level, so they are excluded here.
func cyclomatic(points []models.DecisionPoint) int {
	v := 1
	for _, p := range points {
		switch p.Kind {
		case models.DecisionCondBranch, models.DecisionCatch:
			v++
		case models.DecisionSwitchCase:
			v += p.BranchCount
		}
	}
	return v
}
