package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/depmap"
	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/graph"
	"github.com/skelly-dev/makegraph/internal/nav"
	"github.com/skelly-dev/makegraph/internal/output"
	"github.com/skelly-dev/makegraph/internal/state"
	"github.com/skelly-dev/makegraph/internal/toolchain"
)

// dependencyPass is the outcome of one deps run, full or incremental.
type dependencyPass struct {
	Selection    toolchain.Selection
	Strategy     string
	Full         bool
	Dependencies []depmap.Dependency
	Dropped      []depmap.Resolution
	Scanned      []string
	Reused       []string
	Changed      []string
	Removed      []string
	Impacted     []string
	Reasons      map[string][]string
	State        *state.State // to be saved once outputs are recorded
}

// runDependencyPass scans the workspace for edges. With incremental set it
// rescans only changed projects and the projects depending on them, and
// reuses the stored edges of the rest. Any change in the project set or in
// the scan settings falls back to a full pass.
func runDependencyPass(ctx context.Context, s *session, incremental, quiet bool) (*dependencyPass, error) {
	strategies, selection, err := s.strategies()
	if err != nil {
		return nil, err
	}

	previous, err := loadState(s.Root)
	if err != nil {
		return nil, err
	}

	fingerprints := projectFingerprints(ctx, s)
	current := fileutil.ToSet(s.Set.Names())
	changed := previous.ChangedProjects(fingerprints)
	removed := previous.RemovedProjects(current)
	impacted, reasons := previous.ImpactedProjects(changed, removed)

	pass := &dependencyPass{
		Selection: selection,
		Strategy:  strategyKey(selection, s.Config),
		Changed:   changed,
		Removed:   removed,
		Impacted:  impacted,
		Reasons:   reasons,
	}

	added := false
	for _, name := range changed {
		if _, ok := previous.Projects[name]; !ok {
			added = true
			break
		}
	}
	pass.Full = !incremental ||
		previous.Version != state.CurrentStateVersion ||
		previous.Strategy != pass.Strategy ||
		len(previous.Projects) == 0 ||
		added ||
		len(removed) > 0

	var targets []string
	if pass.Full {
		targets = s.Set.Names()
	} else {
		for _, name := range impacted {
			if current[name] {
				targets = append(targets, name)
			}
		}
	}

	progress := newPassProgress(pass.Strategy, len(targets), quiet)
	var scanned [][]depmap.Dependency
	for _, name := range targets {
		result, err := graph.BuildDependencies(ctx, s.Set, strategies, []string{name})
		if err != nil {
			return nil, err
		}
		progress.Step(name, result)
		scanned = append(scanned, result.Dependencies)
		pass.Dropped = append(pass.Dropped, result.Dropped...)
		pass.Scanned = append(pass.Scanned, result.Visited...)
	}
	pass.Scanned = fileutil.DedupeStrings(pass.Scanned)

	mapper := depmap.NewMapper(s.Set)
	for _, dep := range depmap.Union(scanned...) {
		mapper.AddDependency(dep)
	}
	visited := fileutil.ToSet(pass.Scanned)
	for _, name := range fileutil.MapKeysSorted(previous.Projects) {
		if visited[name] || !current[name] {
			continue
		}
		pass.Reused = append(pass.Reused, name)
		for _, dep := range previous.Projects[name].Dependencies {
			mapper.AddDependency(dep)
		}
	}
	pass.Dependencies = mapper.Dependencies()
	progress.Finish(len(pass.Reused))

	bySource := make(map[string][]depmap.Dependency)
	for _, dep := range pass.Dependencies {
		bySource[dep.Source] = append(bySource[dep.Source], dep)
	}
	next := state.NewState()
	next.Strategy = pass.Strategy
	for _, name := range s.Set.Names() {
		project, _ := s.Set.Lookup(name)
		next.SetProject(name, project.Root, fingerprints[name], bySource[name])
	}
	for key, hash := range previous.OutputHashes {
		next.SetOutputHash(key, hash)
	}
	pass.State = next

	return pass, nil
}

func (p *dependencyPass) summary(mode, rootPath string, projects int, start time.Time) RunSummary {
	return RunSummary{
		Mode:             mode,
		RootPath:         rootPath,
		Strategy:         p.Strategy,
		Full:             p.Full,
		Projects:         projects,
		Scanned:          len(p.Scanned),
		Reused:           len(p.Reused),
		Dependencies:     len(p.Dependencies),
		Dropped:          len(p.Dropped),
		Changed:          len(p.Changed),
		Removed:          len(p.Removed),
		Impacted:         len(p.Impacted),
		DurationMS:       time.Since(start).Milliseconds(),
		ChangedProjects:  p.Changed,
		RemovedProjects:  p.Removed,
		ImpactedProjects: p.Impacted,
	}
}

func RunDeps(cmd *cobra.Command, args []string) error {
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
	pass, err := runDependencyPass(ctx, s, incremental, asJSON)
	if err != nil {
		return err
	}

	doc := output.Document{Dependencies: pass.Dependencies}
	written, err := emitDocument(ctx, s.Root, doc, format, outPath, pass.State)
	if err != nil {
		return err
	}
	if err := pass.State.Save(s.Root); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	summary := pass.summary("deps", s.Root, s.Set.Len(), start)
	summary.Format = string(format)
	summary.OutputFile = written
	return PrintRunSummary(summaryWriter(written), summary, asJSON)
}

// summaryWriter keeps stdout free for the document when no --out is given.
func summaryWriter(written string) *os.File {
	if written == "" {
		return os.Stderr
	}
	return os.Stdout
}
