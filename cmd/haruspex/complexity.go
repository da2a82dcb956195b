package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/seerlab/haruspex/internal/output"
	"github.com/seerlab/haruspex/pkg/models"
)

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Analyze method complexity in a JAR, directory, or class file",
		ArgsUsage: "<target>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 25,
				Usage: "Show top N methods by cyclomatic complexity (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "include-synthetic",
				Usage: "Include compiler-generated methods",
			},
			&cli.BoolFlag{
				Name:  "sort-cognitive",
				Usage: "Sort by cognitive instead of cyclomatic complexity",
			},
		},
		Action: runComplexityCmd,
	}
}

func runComplexityCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one target, got %d", c.Args().Len())
	}

	report, archive, err := analyzeTarget(c, c.Args().First(), false)
	if err != nil {
		return err
	}

	sortMethods(report.Methods, c.Bool("sort-cognitive"))

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	for _, ce := range archive.Errors {
		formatter.Warning("skipped %s: %v", ce.Entry, ce.Err)
	}

	return formatter.Output(&output.ComplexityReport{Report: report, Top: c.Int("top")})
}

// sortMethods orders results worst-first; failed methods sink to the end.
func sortMethods(methods []models.MethodResult, byCognitive bool) {
	sort.SliceStable(methods, func(i, j int) bool {
		a, b := &methods[i], &methods[j]
		if a.Failed() != b.Failed() {
			return b.Failed()
		}
		if byCognitive {
			if a.Metrics.Cognitive != b.Metrics.Cognitive {
				return a.Metrics.Cognitive > b.Metrics.Cognitive
			}
		}
		if a.Metrics.Cyclomatic != b.Metrics.Cyclomatic {
			return a.Metrics.Cyclomatic > b.Metrics.Cyclomatic
		}
		return a.ID() < b.ID()
	})
}
