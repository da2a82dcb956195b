// Package cfg partitions decoded bytecode into basic blocks and builds the
// per-method control-flow graph.
package cfg

import (
	"fmt"
	"sort"

	"github.com/seerlab/haruspex/internal/bytecode"
)

// Block is a basic block: a maximal instruction run with one entry and one
// exit. Its ID is its start offset, which is stable across rebuilds.
type Block struct {
	ID      int
	Start   int
	End     int   // offset of the last instruction, inclusive
	Offsets []int // instruction offsets in order
}

// Last returns the offset of the block's final instruction.
func (b *Block) Last() int { return b.End }

// Partition computes the leader set and splits the stream into ordered
// basic blocks. Leaders are offset 0, every branch or switch target, the
// offset after any branch, switch or terminal instruction, and every
// exception handler entry.
func Partition(s *bytecode.Stream, regions []bytecode.ExceptionRegion) ([]*Block, error) {
	if len(s.Instructions) == 0 {
		return nil, fmt.Errorf("%w: empty instruction stream", bytecode.ErrMalformed)
	}

	leaders := map[int]bool{0: true}

	for _, in := range s.Instructions {
		if in.Branches() {
			for _, t := range in.DistinctTargets() {
				if t >= s.BodyLen {
					return nil, fmt.Errorf("%w: %s at offset %d targets %d past body end %d",
						bytecode.ErrMalformed, in.Mnemonic(), in.Offset, t, s.BodyLen)
				}
				if !s.IsBoundary(t) {
					return nil, fmt.Errorf("%w: %s at offset %d targets %d inside another instruction",
						bytecode.ErrUnresolvedTarget, in.Mnemonic(), in.Offset, t)
				}
				leaders[t] = true
			}
		}
		if in.Branches() || in.IsTerminal() {
			// The instruction after a control transfer starts a new
			// block. Past the final instruction there is nothing to
			// lead.
			if next := in.Offset + in.Size; next < s.BodyLen {
				leaders[next] = true
			}
		}
	}

	for _, r := range regions {
		if r.HandlerPC >= s.BodyLen || !s.IsBoundary(r.HandlerPC) {
			return nil, fmt.Errorf("%w: handler offset %d is not an instruction boundary",
				bytecode.ErrUnresolvedTarget, r.HandlerPC)
		}
		leaders[r.HandlerPC] = true
	}

	sorted := make([]int, 0, len(leaders))
	for off := range leaders {
		sorted = append(sorted, off)
	}
	sort.Ints(sorted)

	blocks := make([]*Block, 0, len(sorted))
	for i, start := range sorted {
		end := s.BodyLen
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		b := &Block{ID: start, Start: start}
		for idx := s.IndexOf(start); idx >= 0 && idx < len(s.Instructions); idx++ {
			in := s.Instructions[idx]
			if in.Offset >= end {
				break
			}
			b.Offsets = append(b.Offsets, in.Offset)
			b.End = in.Offset
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}
