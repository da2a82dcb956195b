package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seerlab/haruspex/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"", FormatText},
		{"invalid", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.colored {
		t.Error("file output must disable color")
	}
	if err := f.Output(map[string]int{"methods": 3}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got["methods"] != 3 {
		t.Errorf("round-tripped value = %v", got)
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := &Table{
		Title:   "Methods",
		Headers: []string{"Method", "Cyclomatic"},
		Rows:    [][]string{{"A.run()V", "3"}},
		Footer:  []string{"total", "3"},
	}

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"## Methods",
		"| Method | Cyclomatic |",
		"| --- | --- |",
		"| A.run()V | 3 |",
		"| total | 3 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
}

func TestTableRenderDataFallsBackToRows(t *testing.T) {
	table := &Table{
		Headers: []string{"Kind", "Target"},
		Rows:    [][]string{{"method", "A.run()V"}},
	}
	rows, ok := table.RenderData().([]map[string]string)
	if !ok || len(rows) != 1 {
		t.Fatalf("RenderData() = %#v", table.RenderData())
	}
	if rows[0]["Target"] != "A.run()V" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestComplexityReportRenderText(t *testing.T) {
	rep := &models.Report{
		Source: "app.jar",
		Methods: []models.MethodResult{
			{
				ClassName: "com.example.A", Name: "run", Descriptor: "()V",
				Metrics: models.ComplexityMetrics{Cyclomatic: 3, Modified: 4, Cognitive: 5, Essential: 1},
				Risk:    models.RiskLow,
			},
			{ClassName: "com.example.A", Name: "bad", Descriptor: "()V", Error: "truncated body"},
		},
		Hotspots: []models.Hotspot{
			{Kind: models.HotspotClass, ClassName: "com.example.A", MeanCyclomatic: 26.5, Recommendation: "split it"},
		},
		Summary: models.ReportSummary{TotalClasses: 1, TotalMethods: 2, FailedMethods: 1, AvgCyclomatic: 3, P90Cyclomatic: 3, MaxCyclomatic: 3},
	}

	var buf bytes.Buffer
	if err := (&ComplexityReport{Report: rep}).RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"Complexity report: app.jar",
		"1 classes, 2 methods (1 failed)",
		"com.example.A.run()V",
		"error: truncated body",
		"Hotspots",
		"split it",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("text report missing %q:\n%s", want, got)
		}
	}
}
