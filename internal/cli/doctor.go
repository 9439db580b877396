package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/config"
	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/graph"
	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/nav"
	"github.com/skelly-dev/makegraph/internal/state"
	"github.com/skelly-dev/makegraph/internal/toolchain"
)

func RunDoctor(cmd *cobra.Command, args []string) error {
	ctx, err := commandContext(cmd)
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

	summary := DoctorSummary{
		Mode:       "doctor",
		RootPath:   s.Root,
		Configured: s.Config.DependencyCompiler,
		Toolchain:  toolchain.SortedCapabilities(toolchain.ProbeWithLookPath(lookPath)),
		Projects:   s.Set.Len(),
		Collisions: s.Config.Namer().Collisions(s.Set.Roots()),
	}
	if len(summary.Collisions) == 0 {
		summary.Collisions = nil
	}
	if summary.Projects == 0 {
		summary.Missing = append(summary.Missing, makefile.Names[len(makefile.Names)-1])
		summary.Suggestions = append(summary.Suggestions, "add a Makefile to each project directory")
	}

	strategies, selection, err := s.strategies()
	var configErr *toolchain.ConfigError
	switch {
	case errors.As(err, &configErr):
		summary.Missing = append(summary.Missing, "compiler "+configErr.Compiler)
		summary.Suggestions = append(summary.Suggestions,
			fmt.Sprintf("install %s or set dependency_compiler = %q in %s", configErr.Compiler, toolchain.ModeManual, config.FileName))
	case err != nil:
		return err
	default:
		summary.Selection = &selection
		result, err := graph.BuildDependencies(ctx, s.Set, strategies, nil)
		if err != nil {
			return err
		}
		cycles, err := graph.Cycles(result.Dependencies)
		if err != nil {
			return err
		}
		summary.Cycles = cycles

		nodes, err := graph.BuildNodes(ctx, s.Set, s.Config.Jobs)
		if err != nil {
			return err
		}
		for _, node := range graph.New(nodes, result.Dependencies).TopNodes(3) {
			if len(node.InEdges) > 0 {
				summary.MostUsed = append(summary.MostUsed, node.Name)
			}
		}
	}

	if _, statErr := os.Stat(state.Path(s.Root)); statErr == nil {
		summary.StateFound = true
		st, err := state.Load(s.Root)
		if err != nil {
			summary.Missing = append(summary.Missing, "valid state file")
			summary.Suggestions = append(summary.Suggestions, "run makegraph deps")
		} else {
			fingerprints := projectFingerprints(ctx, s)
			summary.Changed = len(st.ChangedProjects(fingerprints))
			summary.Removed = len(st.RemovedProjects(fileutil.ToSet(s.Set.Names())))
			summary.Clean = summary.Changed == 0 && summary.Removed == 0
			summary.Stale = staleOutputs(s.Root, st)
			if !summary.Clean {
				summary.Suggestions = append(summary.Suggestions, "run makegraph deps --incremental")
			}
			if len(summary.Stale) > 0 {
				summary.Suggestions = append(summary.Suggestions, "rerun makegraph with --out to refresh stale outputs")
			}
		}
	}

	summary.Missing = fileutil.DedupeStrings(summary.Missing)
	sort.Strings(summary.Missing)
	summary.Suggestions = fileutil.DedupeStrings(summary.Suggestions)
	sort.Strings(summary.Suggestions)
	summary.Healthy = summary.Selection != nil &&
		len(summary.Missing) == 0 &&
		len(summary.Collisions) == 0 &&
		len(summary.Cycles) == 0 &&
		len(summary.Stale) == 0 &&
		(!summary.StateFound || summary.Clean)

	return PrintDoctorSummary(os.Stdout, summary, asJSON)
}
