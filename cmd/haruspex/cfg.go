package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/seerlab/haruspex/internal/analyzer"
	"github.com/seerlab/haruspex/internal/output"
)

func cfgCmd() *cli.Command {
	return &cli.Command{
		Name:      "cfg",
		Usage:     "Dump a method's control-flow graph as a Mermaid diagram",
		ArgsUsage: "<target> <class.method[descriptor]>",
		Action:    runCfgCmd,
	}
}

func runCfgCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected a target and a method identifier, e.g. app.jar com.example.App.main")
	}
	target, methodID := c.Args().Get(0), c.Args().Get(1)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	archive, _, err := loadMethods(target, cfg, true)
	if err != nil {
		return err
	}

	m := archive.FindMethod(methodID)
	if m == nil {
		return fmt.Errorf("method %q not found in %s", methodID, target)
	}

	res := analyzer.AnalyzeMethod(m, analyzer.Options{IncludeGraph: true})
	if res.Failed() {
		return fmt.Errorf("%s: %s", m.ID(), res.Error)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	switch output.ParseFormat(c.String("format")) {
	case output.FormatJSON:
		return formatter.Output(res)
	case output.FormatMarkdown:
		fmt.Fprintf(formatter.Writer(), "## %s\n\n```mermaid\n%s```\n", m.ID(), res.Graph.ToMermaid())
		return nil
	default:
		fmt.Fprint(formatter.Writer(), res.Graph.ToMermaid())
		fmt.Fprintf(formatter.Writer(), "\n%% cyclomatic %d, modified %d, cognitive %d, essential %d\n",
			res.Metrics.Cyclomatic, res.Metrics.Modified, res.Metrics.Cognitive, res.Metrics.Essential)
		return nil
	}
}
