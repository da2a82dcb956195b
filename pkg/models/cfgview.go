package models

import (
	"fmt"
	"strings"
)

// CFGNode is an exported basic block: ID is the block's start offset.
type CFGNode struct {
	ID           int  `json:"id"`
	Start        int  `json:"start"`
	End          int  `json:"end"`
	Instructions int  `json:"instructions"`
	Terminal     bool `json:"terminal,omitempty"`
	Unreachable  bool `json:"unreachable,omitempty"`
}

// CFGEdge is an exported control-flow transition.
type CFGEdge struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Kind string `json:"kind"`
}

// CFGView is the control-flow graph exported for rendering. It carries no
// behavior beyond diagram generation; callers wanting graph algorithms work
// on the analyzer's internal graph.
type CFGView struct {
	Method string    `json:"method"`
	Nodes  []CFGNode `json:"nodes"`
	Edges  []CFGEdge `json:"edges"`
}

// ToMermaid renders the graph as a Mermaid flowchart. Exception edges are
// dotted; unreachable blocks are tagged in their labels.
func (v *CFGView) ToMermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range v.Nodes {
		label := fmt.Sprintf("%d..%d", n.Start, n.End)
		if n.Terminal {
			label += " ret"
		}
		if n.Unreachable {
			label += " (unreachable)"
		}
		fmt.Fprintf(&sb, "    B%d[\"%s\"]\n", n.ID, label)
	}

	for _, e := range v.Edges {
		if e.Kind == "exception" {
			fmt.Fprintf(&sb, "    B%d -.->|exception| B%d\n", e.From, e.To)
		} else {
			fmt.Fprintf(&sb, "    B%d -->|%s| B%d\n", e.From, e.Kind, e.To)
		}
	}

	return sb.String()
}
