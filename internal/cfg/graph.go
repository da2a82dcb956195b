package cfg

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/seerlab/haruspex/internal/bytecode"
)

// EdgeKind labels a control-flow transition.
type EdgeKind string

const (
	EdgeCondTrue      EdgeKind = "conditional-true"
	EdgeCondFalse     EdgeKind = "conditional-false"
	EdgeUnconditional EdgeKind = "unconditional"
	EdgeFallthrough   EdgeKind = "fallthrough"
	EdgeException     EdgeKind = "exception"
)

// Edge is one directed transition between blocks, identified by block IDs
// rather than pointers.
type Edge struct {
	From int
	To   int
	Kind EdgeKind

	// Case attributes a switch edge to its source: the ordinal of the
	// first case jumping to To, or the case count for the default arm.
	// -1 for non-switch edges.
	Case int
}

// Graph is the control-flow graph of a single method. Blocks and edges are
// immutable after Build returns.
type Graph struct {
	Blocks []*Block
	Edges  []Edge
	Entry  int

	// Unreachable lists blocks with no path from the entry block. They
	// are intra-method dead code: flagged, never dropped.
	Unreachable []int

	byID map[int]*Block
	succ map[int][]int // edge indices by source block
}

// Block returns the block with the given ID.
func (g *Graph) Block(id int) (*Block, bool) {
	b, ok := g.byID[id]
	return b, ok
}

// Out returns the outgoing edges of a block in insertion order.
func (g *Graph) Out(id int) []Edge {
	idxs := g.succ[id]
	out := make([]Edge, len(idxs))
	for i, e := range idxs {
		out[i] = g.Edges[e]
	}
	return out
}

// Counts returns node and edge totals, optionally excluding exception edges.
func (g *Graph) Counts(withExceptions bool) (nodes, edges int) {
	nodes = len(g.Blocks)
	for _, e := range g.Edges {
		if withExceptions || e.Kind != EdgeException {
			edges++
		}
	}
	return nodes, edges
}

// Components counts weakly connected components over non-exception edges.
// Handler blocks reached only through exception edges form their own
// components under this view.
func (g *Graph) Components() int {
	adj := make(map[int][]int, len(g.Blocks))
	for _, e := range g.Edges {
		if e.Kind == EdgeException {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}

	seen := roaring.New()
	components := 0
	for _, b := range g.Blocks {
		if seen.Contains(uint32(b.ID)) {
			continue
		}
		components++
		stack := []int{b.ID}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen.Contains(uint32(n)) {
				continue
			}
			seen.Add(uint32(n))
			stack = append(stack, adj[n]...)
		}
	}
	return components
}

// Build wires basic blocks into a Graph. Every block's final instruction
// determines its non-exception successors; exception edges are added for
// every region whose try range intersects the block.
func Build(s *bytecode.Stream, blocks []*Block, regions []bytecode.ExceptionRegion) (*Graph, error) {
	g := &Graph{
		Blocks: blocks,
		byID:   make(map[int]*Block, len(blocks)),
		succ:   make(map[int][]int),
	}
	for _, b := range blocks {
		g.byID[b.ID] = b
	}

	for i, b := range blocks {
		last, ok := s.At(b.Last())
		if !ok {
			return nil, fmt.Errorf("%w: block %d ends at non-instruction offset %d",
				bytecode.ErrMalformed, b.ID, b.Last())
		}

		var next *Block
		if i+1 < len(blocks) {
			next = blocks[i+1]
		}

		switch last.Class {
		case bytecode.ClassCondBranch:
			if next == nil {
				return nil, fmt.Errorf("%w: conditional branch at offset %d falls off body end",
					bytecode.ErrMalformed, last.Offset)
			}
			g.addEdge(Edge{From: b.ID, To: last.Target, Kind: EdgeCondTrue, Case: -1})
			g.addEdge(Edge{From: b.ID, To: next.ID, Kind: EdgeCondFalse, Case: -1})

		case bytecode.ClassJump:
			g.addEdge(Edge{From: b.ID, To: last.Target, Kind: EdgeUnconditional, Case: -1})

		case bytecode.ClassTableSwitch, bytecode.ClassLookupSwitch:
			addSwitchEdges(g, b.ID, last)

		case bytecode.ClassReturn, bytecode.ClassThrow:
			// Terminal: no outgoing edges.

		default:
			if next == nil {
				return nil, fmt.Errorf("%w: %s at offset %d falls off body end",
					bytecode.ErrMalformed, last.Mnemonic(), last.Offset)
			}
			g.addEdge(Edge{From: b.ID, To: next.ID, Kind: EdgeFallthrough, Case: -1})
		}
	}

	// One exception edge per intersecting region, in table order.
	// Overlapping regions produce multiple edges from the same block;
	// each represents a distinct catch clause and is never deduplicated.
	for _, b := range blocks {
		for _, r := range regions {
			if r.Covers(b.Start, b.End) {
				g.addEdge(Edge{From: b.ID, To: r.HandlerPC, Kind: EdgeException, Case: -1})
			}
		}
	}

	g.Unreachable = g.findUnreachable()
	return g, nil
}

func (g *Graph) addEdge(e Edge) {
	g.succ[e.From] = append(g.succ[e.From], len(g.Edges))
	g.Edges = append(g.Edges, e)
}

// addSwitchEdges emits one edge per distinct target, default included. Each
// edge carries the ordinal of the first case reaching that target so report
// generators can attribute it; the default arm uses the case count.
func addSwitchEdges(g *Graph, from int, in bytecode.Instruction) {
	seen := make(map[int]bool, len(in.Cases)+1)
	for ord, t := range in.Cases {
		if seen[t] {
			continue
		}
		seen[t] = true
		g.addEdge(Edge{From: from, To: t, Kind: EdgeUnconditional, Case: ord})
	}
	if !seen[in.Default] {
		g.addEdge(Edge{From: from, To: in.Default, Kind: EdgeUnconditional, Case: len(in.Cases)})
	}
}

// findUnreachable walks forward from the entry block over all edge kinds and
// returns the block IDs never visited, in offset order.
func (g *Graph) findUnreachable() []int {
	visited := roaring.New()
	stack := []int{g.Entry}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Contains(uint32(n)) {
			continue
		}
		visited.Add(uint32(n))
		for _, e := range g.Out(n) {
			stack = append(stack, e.To)
		}
	}

	var dead []int
	for _, b := range g.Blocks {
		if !visited.Contains(uint32(b.ID)) {
			dead = append(dead, b.ID)
		}
	}
	sort.Ints(dead)
	return dead
}
