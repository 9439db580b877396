package include

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/skelly-dev/makegraph/internal/ctxlog"
	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/languages"
	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/source"
	"github.com/skelly-dev/makegraph/internal/toolchain"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// PreprocessorStrategy asks a C compiler which headers each translation
// unit pulls in, using the Makefile's "-I" flags as search paths.
type PreprocessorStrategy struct {
	Compiler string
	Runner   toolchain.Runner
	Matcher  *ignore.Matcher
	MaxFiles int // 0 = unlimited
	Jobs     int // concurrent compiler runs; <= 0 means one
}

func (s *PreprocessorStrategy) Candidates(ctx context.Context, project workspace.Project, set *workspace.Set) ([]Candidate, error) {
	logger := ctxlog.FromContext(ctx)

	var includeDirs []string
	for _, flag := range makefile.IncludeFlags(readMakefile(ctx, project)) {
		includeDirs = append(includeDirs, flag.Path)
	}

	files, issues := source.ProjectFiles(project.Dir, source.WalkOptions{
		WorkspaceRoot: workspaceRoot(set, project),
		Matcher:       s.Matcher,
		Accept:        languages.IsCompilable,
	})
	logIssues(ctx, project, issues)

	if s.MaxFiles > 0 && len(files) > s.MaxFiles {
		logger.Debug("file cap reached", "project", project.Name, "files", len(files), "max", s.MaxFiles)
		files = files[:s.MaxFiles]
	}

	results := make([][]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	jobs := s.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			headers, err := toolchain.DependencyList(gctx, s.Runner, s.Compiler, project.Dir, file, includeDirs)
			if err != nil {
				var cfgErr *toolchain.ConfigError
				if errors.As(err, &cfgErr) {
					return err
				}
				logger.Debug("compiler failed", "project", project.Name, "file", file, "reason", err)
				return nil
			}
			results[i] = headers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Candidate
	for i, headers := range results {
		for _, header := range headers {
			out = append(out, Candidate{
				Project:  project.Name,
				Path:     header,
				Evidence: files[i],
				Strategy: StrategyPreprocessor,
			})
		}
	}
	return out, nil
}
