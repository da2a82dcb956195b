package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/seerlab/haruspex/internal/output"
)

func hotspotsCmd() *cli.Command {
	return &cli.Command{
		Name:      "hotspots",
		Aliases:   []string{"hs"},
		Usage:     "List methods and classes exceeding complexity thresholds",
		ArgsUsage: "<target>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 20,
				Usage: "Show top N hotspots (0 = all)",
			},
		},
		Action: runHotspotsCmd,
	}
}

func runHotspotsCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one target, got %d", c.Args().Len())
	}

	report, _, err := analyzeTarget(c, c.Args().First(), false)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	hotspots := report.Hotspots
	if top := c.Int("top"); top > 0 && len(hotspots) > top {
		hotspots = hotspots[:top]
	}

	if len(hotspots) == 0 {
		if output.ParseFormat(c.String("format")) == output.FormatText {
			color.Green("No hotspots: %d methods analyzed, max cyclomatic %d",
				report.Summary.TotalMethods, report.Summary.MaxCyclomatic)
			return nil
		}
		return formatter.Output(report.Hotspots)
	}

	rows := make([][]string, 0, len(hotspots))
	for _, h := range hotspots {
		target := h.ClassName
		severity := fmt.Sprintf("%.1f", h.MeanCyclomatic)
		if h.Method != "" {
			target += "." + h.Method
			severity = fmt.Sprintf("cyclomatic %d, cognitive %d", h.Cyclomatic, h.Cognitive)
		} else {
			severity = "mean cyclomatic " + severity
		}
		rows = append(rows, []string{string(h.Kind), target, severity, h.Recommendation})
	}

	return formatter.Output(&output.Table{
		Title:   fmt.Sprintf("Hotspots (%d of %d methods flagged)", len(hotspots), report.Summary.TotalMethods),
		Headers: []string{"Kind", "Target", "Severity", "Recommendation"},
		Rows:    rows,
		Data:    hotspots,
	})
}
