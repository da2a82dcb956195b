package cfg

// Structural reduction for essential complexity. The classic T1/T2
// transformations from structured-program theory: T1 deletes self-loops, T2
// merges a node into its unique predecessor. A reducible flow graph
// collapses to a single node per component; whatever survives is
// unstructured control flow.

// Reduced describes the limit graph after exhaustive T1/T2 application to
// the non-exception subgraph.
type Reduced struct {
	Nodes      int
	Edges      int // parallel edges kept, they represent distinct paths
	Components int
}

// Reduce applies T1/T2 until fixpoint and returns the limit graph's shape.
func Reduce(g *Graph) Reduced {
	nodes := make(map[int]bool, len(g.Blocks))
	succ := make(map[int]map[int]int, len(g.Blocks)) // target -> multiplicity
	pred := make(map[int]map[int]int, len(g.Blocks))

	addEdge := func(from, to, n int) {
		if succ[from] == nil {
			succ[from] = make(map[int]int)
		}
		if pred[to] == nil {
			pred[to] = make(map[int]int)
		}
		succ[from][to] += n
		pred[to][from] += n
	}

	for _, b := range g.Blocks {
		nodes[b.ID] = true
	}
	for _, e := range g.Edges {
		if e.Kind != EdgeException {
			addEdge(e.From, e.To, 1)
		}
	}

	dropEdge := func(from, to int) {
		delete(succ[from], to)
		delete(pred[to], from)
	}

	changed := true
	for changed {
		changed = false
		for n := range nodes {
			// T1: remove self-loops.
			if succ[n][n] > 0 {
				dropEdge(n, n)
				changed = true
			}

			// T2: merge n into its unique predecessor.
			if len(pred[n]) != 1 {
				continue
			}
			var p int
			for p = range pred[n] {
			}
			if p == n {
				continue
			}
			dropEdge(p, n)
			for t, mult := range succ[n] {
				dropEdge(n, t)
				addEdge(p, t, mult)
			}
			delete(nodes, n)
			delete(succ, n)
			delete(pred, n)
			changed = true
		}
	}

	r := Reduced{Nodes: len(nodes)}
	for _, out := range succ {
		for _, mult := range out {
			r.Edges += mult
		}
	}
	r.Components = countComponents(nodes, succ)
	return r
}

// Essential returns the essential complexity: 1 for a fully structured
// graph, raised by whatever the reduction could not collapse. Computed as
// 1 + Σ over limit components of (edges - nodes + 1).
func (r Reduced) Essential() int {
	v := 1 + r.Edges - r.Nodes + r.Components
	if v < 1 {
		return 1
	}
	return v
}

func countComponents(nodes map[int]bool, succ map[int]map[int]int) int {
	adj := make(map[int][]int, len(nodes))
	for from, out := range succ {
		for to := range out {
			adj[from] = append(adj[from], to)
			adj[to] = append(adj[to], from)
		}
	}

	seen := make(map[int]bool, len(nodes))
	components := 0
	for n := range nodes {
		if seen[n] {
			continue
		}
		components++
		stack := []int{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[cur] {
				continue
			}
			seen[cur] = true
			stack = append(stack, adj[cur]...)
		}
	}
	return components
}
