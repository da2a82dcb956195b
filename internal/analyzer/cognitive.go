package analyzer

import (
	"github.com/seerlab/haruspex/internal/bytecode"
)

// cognitive approximates source-level cognitive complexity from the
// instruction stream. Every branch, switch, loop, or catch clause adds 1
// plus its nesting level; boolean combinators add a flat 1. A loop is any
// backward control transfer (target at or before the source); a backward
// conditional counts once, as the loop.
//
// Nesting is tracked as a stack of open spans: a forward conditional opens
// [offset, target), a switch opens up to its furthest target, and a try
// region opens [start, end). A span closes once iteration passes its end.
func cognitive(s *bytecode.Stream, regions []bytecode.ExceptionRegion) int {
	tryOpens := make(map[int][]int) // try start offset -> span ends
	handlers := make(map[int]int)   // handler offset -> catch clause count
	for _, r := range regions {
		tryOpens[r.StartPC] = append(tryOpens[r.StartPC], r.EndPC)
		handlers[r.HandlerPC]++
	}

	total := 0
	var spans []int // end offsets of open spans

	for _, in := range s.Instructions {
		live := spans[:0]
		for _, end := range spans {
			if end > in.Offset {
				live = append(live, end)
			}
		}
		spans = live

		spans = append(spans, tryOpens[in.Offset]...)

		if n := handlers[in.Offset]; n > 0 {
			total += n * (1 + len(spans))
		}

		switch in.Class {
		case bytecode.ClassCondBranch:
			total += 1 + len(spans)
			if in.Target > in.Offset {
				spans = append(spans, in.Target)
			}

		case bytecode.ClassJump:
			// Only a backward jump is a loop; a forward goto is the free
			// exit of an else arm or a break.
			if in.Target <= in.Offset {
				total += 1 + len(spans)
			}

		case bytecode.ClassTableSwitch, bytecode.ClassLookupSwitch:
			total += 1 + len(spans)
			max := in.Offset
			for _, t := range in.ControlTargets() {
				if t > max {
					max = t
				}
			}
			if max > in.Offset {
				spans = append(spans, max)
			}

		case bytecode.ClassBoolOp:
			total++
		}
	}

	return total
}
