package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/seerlab/haruspex/pkg/models"
)

// ComplexityReport renders an aggregated analysis report. Top bounds the
// number of method rows in text and Markdown output; zero means all.
type ComplexityReport struct {
	Report *models.Report
	Top    int
}

func (r *ComplexityReport) RenderData() any { return r.Report }

func (r *ComplexityReport) RenderText(w io.Writer, colored bool) error {
	rep := r.Report

	if colored {
		color.New(color.Bold, color.FgCyan).Fprintf(w, "Complexity report: %s\n", rep.Source)
	} else {
		fmt.Fprintf(w, "Complexity report: %s\n", rep.Source)
	}
	fmt.Fprintf(w, "%d classes, %d methods (%d failed), avg cyclomatic %.1f, p90 %d, max %d\n\n",
		rep.Summary.TotalClasses, rep.Summary.TotalMethods, rep.Summary.FailedMethods,
		rep.Summary.AvgCyclomatic, rep.Summary.P90Cyclomatic, rep.Summary.MaxCyclomatic)

	if err := r.methodTable(colored).RenderText(w, colored); err != nil {
		return err
	}
	if len(rep.Hotspots) > 0 {
		if err := r.hotspotTable().RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *ComplexityReport) RenderMarkdown(w io.Writer) error {
	rep := r.Report

	fmt.Fprintf(w, "# Complexity report: %s\n\n", rep.Source)
	fmt.Fprintf(w, "%d classes, %d methods (%d failed), avg cyclomatic %.1f, p90 %d, max %d\n\n",
		rep.Summary.TotalClasses, rep.Summary.TotalMethods, rep.Summary.FailedMethods,
		rep.Summary.AvgCyclomatic, rep.Summary.P90Cyclomatic, rep.Summary.MaxCyclomatic)

	if err := r.methodTable(false).RenderMarkdown(w); err != nil {
		return err
	}
	if len(rep.Hotspots) > 0 {
		return r.hotspotTable().RenderMarkdown(w)
	}
	return nil
}

func (r *ComplexityReport) methodTable(colored bool) *Table {
	methods := r.Report.Methods
	if r.Top > 0 && len(methods) > r.Top {
		methods = methods[:r.Top]
	}

	rows := make([][]string, 0, len(methods))
	for i := range methods {
		m := &methods[i]
		if m.Failed() {
			rows = append(rows, []string{m.ID(), "-", "-", "-", "-", "error: " + m.Error})
			continue
		}
		risk := string(m.Risk)
		if colored {
			risk = RiskColor(m.Risk, risk)
		}
		rows = append(rows, []string{
			m.ID(),
			strconv.Itoa(m.Metrics.Cyclomatic),
			strconv.Itoa(m.Metrics.Modified),
			strconv.Itoa(m.Metrics.Cognitive),
			strconv.Itoa(m.Metrics.Essential),
			risk,
		})
	}

	return &Table{
		Title:   "Methods",
		Headers: []string{"Method", "Cyclomatic", "Modified", "Cognitive", "Essential", "Risk"},
		Rows:    rows,
		Data:    methods,
	}
}

func (r *ComplexityReport) hotspotTable() *Table {
	rows := make([][]string, 0, len(r.Report.Hotspots))
	for _, h := range r.Report.Hotspots {
		target := h.ClassName
		if h.Method != "" {
			target += "." + h.Method
		}
		rows = append(rows, []string{string(h.Kind), target, h.Recommendation})
	}
	return &Table{
		Title:   "Hotspots",
		Headers: []string{"Kind", "Target", "Recommendation"},
		Rows:    rows,
		Data:    r.Report.Hotspots,
	}
}
