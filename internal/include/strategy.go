// Package include discovers paths a project references outside its own
// directory. Each Strategy gathers candidates independently; resolving them
// to project dependencies is left to depmap.
package include

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/skelly-dev/makegraph/internal/ctxlog"
	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/languages"
	"github.com/skelly-dev/makegraph/internal/source"
	"github.com/skelly-dev/makegraph/internal/toolchain"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// Strategy names used in Candidate.Strategy.
const (
	StrategyIncludeFlag  = "include-flag"
	StrategyLexical      = "lexical"
	StrategyPreprocessor = "preprocessor"
)

// Candidate is a path, relative to the project directory, that may point
// into another project.
type Candidate struct {
	Project  string // source project name
	Path     string // as written or as reported by the compiler
	Evidence string // "file:line" or the source file that pulled the header in
	Strategy string
}

// Strategy gathers candidate paths for one project. Only a missing
// toolchain is returned as an error; everything else degrades to fewer
// candidates.
type Strategy interface {
	Candidates(ctx context.Context, project workspace.Project, set *workspace.Set) ([]Candidate, error)
}

// Options configures StrategiesFor.
type Options struct {
	Mode        toolchain.Mode
	MaxFiles    int  // 0 = unlimited
	Jobs        int  // 0 = runtime.NumCPU()
	ScanSources bool // in compiler mode, also run the lexical scan
	Matcher     *ignore.Matcher
	Registry    *source.Registry
	LookPath    toolchain.LookPathFunc
	Runner      toolchain.Runner
}

// StrategiesFor resolves the configured mode and returns the strategies to
// run. An explicit compiler that is missing fails here, before any project
// is scanned.
func StrategiesFor(opts Options) ([]Strategy, toolchain.Selection, error) {
	selection, err := toolchain.Resolve(opts.Mode, opts.LookPath)
	if err != nil {
		return nil, toolchain.Selection{}, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = languages.NewDefaultRegistry()
	}

	strategies := []Strategy{&IncludeFlagStrategy{}}
	lexical := &LexicalStrategy{Registry: registry, Matcher: opts.Matcher}

	if !selection.UsesCompiler() {
		return append(strategies, lexical), selection, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	strategies = append(strategies, &PreprocessorStrategy{
		Compiler: selection.Compiler,
		Runner:   opts.Runner,
		Matcher:  opts.Matcher,
		MaxFiles: opts.MaxFiles,
		Jobs:     jobs,
	})
	if opts.ScanSources {
		strategies = append(strategies, lexical)
	}
	return strategies, selection, nil
}

// readMakefile returns the project's Makefile text, or "" when it cannot be
// read.
func readMakefile(ctx context.Context, project workspace.Project) string {
	if project.Makefile == "" {
		return ""
	}
	data, err := os.ReadFile(project.Makefile)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("makefile unreadable", "project", project.Name, "file", project.Makefile, "error", err)
		return ""
	}
	return string(data)
}

func makefileEvidence(project workspace.Project, line int) string {
	return fmt.Sprintf("%s:%d", filepath.Base(project.Makefile), line)
}

func logIssues(ctx context.Context, project workspace.Project, issues []source.Issue) {
	logger := ctxlog.FromContext(ctx)
	for _, issue := range issues {
		logger.Debug("skipped file", "project", project.Name, "file", issue.File, "reason", issue.Message)
	}
}
