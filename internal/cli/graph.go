package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/graph"
	"github.com/skelly-dev/makegraph/internal/nav"
	"github.com/skelly-dev/makegraph/internal/output"
)

// RunGraph prints nodes linked with their dependency edges, plus any
// dependency cycles.
func RunGraph(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx, err := commandContext(cmd)
	if err != nil {
		return err
	}
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}
	incremental, err := nav.OptionalBoolFlag(cmd, "incremental", false)
	if err != nil {
		return err
	}
	asJSON, err := nav.OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	s, err := openWorkspace(ctx, cmd, args)
	if err != nil {
		return err
	}
	nodes, err := graph.BuildNodes(ctx, s.Set, s.Config.Jobs)
	if err != nil {
		return fmt.Errorf("failed to build nodes: %w", err)
	}
	pass, err := runDependencyPass(ctx, s, incremental, asJSON)
	if err != nil {
		return err
	}
	cycles, err := graph.Cycles(pass.Dependencies)
	if err != nil {
		return err
	}

	g := graph.New(nodes, pass.Dependencies)
	doc := output.Document{
		Nodes:        g.SortedNodes(),
		Dependencies: g.Edges,
		Cycles:       cycles,
	}
	written, err := emitDocument(ctx, s.Root, doc, format, outPath, pass.State)
	if err != nil {
		return err
	}
	if err := pass.State.Save(s.Root); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	summary := pass.summary("graph", s.Root, len(nodes), start)
	summary.Format = string(format)
	summary.OutputFile = written
	summary.Cycles = len(cycles)
	return PrintRunSummary(summaryWriter(written), summary, asJSON)
}
