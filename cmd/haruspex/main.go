package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/seerlab/haruspex/internal/analyzer"
	"github.com/seerlab/haruspex/internal/classfile"
	"github.com/seerlab/haruspex/internal/methodproc"
	"github.com/seerlab/haruspex/internal/output"
	"github.com/seerlab/haruspex/internal/progress"
	"github.com/seerlab/haruspex/pkg/config"
	"github.com/seerlab/haruspex/pkg/models"
)

var (
	version = "dev"
	commit  = "none" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "haruspex",
		Usage:   "JVM bytecode complexity analysis",
		Version: version,
		Description: `Haruspex decodes compiled JVM classes, builds per-method control-flow
graphs, and reports cyclomatic, modified, cognitive, and essential
complexity. It reads JARs, directories of class files, or single classes;
no source code is required.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"HARUSPEX_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Number of analysis workers (0 = derive from CPU count)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
		},
		Commands: []*cli.Command{
			complexityCmd(),
			hotspotsCmd(),
			cfgCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// loadMethods opens the target archive and returns its analyzable methods
// after applying the config filters.
func loadMethods(target string, cfg *config.Config, includeSynthetic bool) (*classfile.Archive, []*classfile.Method, error) {
	archive, err := classfile.Load(target)
	if err != nil {
		return nil, nil, err
	}

	var methods []*classfile.Method
	for _, m := range archive.Methods() {
		if cfg.ShouldExclude(m.ClassName) {
			continue
		}
		if m.Synthetic() && !includeSynthetic {
			continue
		}
		methods = append(methods, m)
	}
	return archive, methods, nil
}

// analyzeTarget runs the whole pipeline over one archive and aggregates the
// results. Cancellation via SIGINT/SIGTERM aborts cleanly.
func analyzeTarget(c *cli.Context, target string, includeGraph bool) (*models.Report, *classfile.Archive, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	workers := c.Int("jobs")
	if workers == 0 {
		workers = cfg.Analysis.Workers
	}

	archive, methods, err := loadMethods(target, cfg, cfg.Analysis.IncludeSynthetic || c.Bool("include-synthetic"))
	if err != nil {
		return nil, nil, err
	}
	if len(methods) == 0 {
		return nil, nil, fmt.Errorf("%s: no analyzable methods found", target)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := progress.New("Analyzing methods...", len(methods), !c.Bool("no-progress"))
	opts := analyzer.Options{IncludeGraph: includeGraph}
	results, err := methodproc.MapWithContext(ctx, methods, workers, func(m *classfile.Method) *models.MethodResult {
		return analyzer.AnalyzeMethod(m, opts)
	}, tracker.Tick)
	if err != nil {
		tracker.Fail(err)
		return nil, nil, err
	}
	tracker.Finish()

	thresholds := models.Thresholds{
		MethodCyclomatic: cfg.Thresholds.MethodCyclomatic,
		MethodCognitive:  cfg.Thresholds.MethodCognitive,
		ClassMean:        cfg.Thresholds.ClassMean,
	}
	return analyzer.Aggregate(target, results, thresholds), archive, nil
}

func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
}
