package cfg

// Dominance analysis in the Cooper-Harvey-Kennedy style: iterative
// intersection over reverse postorder. Used by the nesting-weighted
// complexity calculator to recover branch nesting from graph structure.

// virtualExit is the ID of the synthetic node joining all terminal blocks
// when computing post-dominators.
const virtualExit = -1

// Dominators returns the immediate dominator of every block reachable from
// the entry. The entry maps to itself.
func Dominators(g *Graph) map[int]int {
	succ := make(map[int][]int, len(g.Blocks))
	pred := make(map[int][]int, len(g.Blocks))
	for _, e := range g.Edges {
		succ[e.From] = append(succ[e.From], e.To)
		pred[e.To] = append(pred[e.To], e.From)
	}
	return immediateDominators(g.Entry, succ, pred)
}

// PostDominators returns the immediate post-dominator of every block from
// which an exit is reachable. Terminal blocks are joined through a virtual
// exit node, which appears in the result mapped to itself.
func PostDominators(g *Graph) map[int]int {
	// Reverse every edge and root the walk at the virtual exit.
	succ := make(map[int][]int, len(g.Blocks))
	pred := make(map[int][]int, len(g.Blocks))
	for _, e := range g.Edges {
		succ[e.To] = append(succ[e.To], e.From)
		pred[e.From] = append(pred[e.From], e.To)
	}
	for _, b := range g.Blocks {
		if len(g.succ[b.ID]) == 0 {
			succ[virtualExit] = append(succ[virtualExit], b.ID)
			pred[b.ID] = append(pred[b.ID], virtualExit)
		}
	}
	return immediateDominators(virtualExit, succ, pred)
}

// StrictlyDominates reports whether a dominates b under the given idom map,
// with a != b.
func StrictlyDominates(idom map[int]int, a, b int) bool {
	if a == b {
		return false
	}
	for {
		parent, ok := idom[b]
		if !ok || parent == b {
			return false
		}
		if parent == a {
			return true
		}
		b = parent
	}
}

func immediateDominators(entry int, succ, pred map[int][]int) map[int]int {
	order := postorder(entry, succ)
	// Reverse postorder with position lookup.
	rpo := make([]int, len(order))
	pos := make(map[int]int, len(order))
	for i, n := range order {
		rpo[len(order)-1-i] = n
	}
	for i, n := range rpo {
		pos[n] = i
	}

	idom := map[int]int{entry: entry}

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			newIdom := -2
			for _, p := range pred[b] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if newIdom == -2 {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, pos, p, newIdom)
			}
			if newIdom == -2 {
				continue
			}
			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	return idom
}

func intersect(idom map[int]int, pos map[int]int, a, b int) int {
	for a != b {
		for pos[a] > pos[b] {
			a = idom[a]
		}
		for pos[b] > pos[a] {
			b = idom[b]
		}
	}
	return a
}

func postorder(entry int, succ map[int][]int) []int {
	var order []int
	visited := make(map[int]bool)
	var walk func(n int)
	walk = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range succ[n] {
			walk(s)
		}
		order = append(order, n)
	}
	walk(entry)
	return order
}
