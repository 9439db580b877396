package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/graph"
	"github.com/skelly-dev/makegraph/internal/output"
)

func RunNodes(cmd *cobra.Command, args []string) error {
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

	s, err := openWorkspace(ctx, cmd, args)
	if err != nil {
		return err
	}
	nodes, err := graph.BuildNodes(ctx, s.Set, s.Config.Jobs)
	if err != nil {
		return fmt.Errorf("failed to build nodes: %w", err)
	}

	written, err := emitDocument(ctx, s.Root, output.Document{Nodes: nodes}, format, outPath, nil)
	if err != nil {
		return err
	}
	if written == "" {
		return nil
	}
	return PrintRunSummary(summaryWriter(written), RunSummary{
		Mode:       "nodes",
		Format:     string(format),
		RootPath:   s.Root,
		OutputFile: written,
		Projects:   len(nodes),
		DurationMS: time.Since(start).Milliseconds(),
	}, false)
}
