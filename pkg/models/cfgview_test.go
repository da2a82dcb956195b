package models

import (
	"strings"
	"testing"
)

func TestToMermaid(t *testing.T) {
	v := &CFGView{
		Method: "com.example.App.run()V",
		Nodes: []CFGNode{
			{ID: 0, Start: 0, End: 1, Instructions: 2},
			{ID: 4, Start: 4, End: 5, Instructions: 2, Terminal: true},
			{ID: 6, Start: 6, End: 7, Instructions: 2, Unreachable: true},
		},
		Edges: []CFGEdge{
			{From: 0, To: 4, Kind: "conditional-true"},
			{From: 0, To: 6, Kind: "exception"},
		},
	}

	got := v.ToMermaid()
	if !strings.HasPrefix(got, "graph TD\n") {
		t.Fatalf("diagram does not open with graph TD:\n%s", got)
	}
	for _, want := range []string{
		`B0["0..1"]`,
		`B4["4..5 ret"]`,
		`B6["6..7 (unreachable)"]`,
		"B0 -->|conditional-true| B4",
		"B0 -.->|exception| B6",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diagram missing %q:\n%s", want, got)
		}
	}
}
