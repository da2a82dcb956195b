package analyzer

import (
	"github.com/seerlab/haruspex/internal/bytecode"
	"github.com/seerlab/haruspex/internal/cfg"
	"github.com/seerlab/haruspex/pkg/models"
)

// exportGraph converts the internal graph into its rendering form.
func exportGraph(method string, s *bytecode.Stream, g *cfg.Graph) *models.CFGView {
	unreachable := make(map[int]bool, len(g.Unreachable))
	for _, id := range g.Unreachable {
		unreachable[id] = true
	}

	view := &models.CFGView{
		Method: method,
		Nodes:  make([]models.CFGNode, 0, len(g.Blocks)),
		Edges:  make([]models.CFGEdge, 0, len(g.Edges)),
	}

	for _, b := range g.Blocks {
		terminal := false
		if in, ok := s.At(b.Last()); ok {
			terminal = in.IsTerminal()
		}
		view.Nodes = append(view.Nodes, models.CFGNode{
			ID:           b.ID,
			Start:        b.Start,
			End:          b.End,
			Instructions: len(b.Offsets),
			Terminal:     terminal,
			Unreachable:  unreachable[b.ID],
		})
	}

	for _, e := range g.Edges {
		view.Edges = append(view.Edges, models.CFGEdge{
			From: e.From,
			To:   e.To,
			Kind: string(e.Kind),
		})
	}

	return view
}
