package include

import (
	"context"

	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// IncludeFlagStrategy treats every "-I" search path in the Makefile as a
// candidate. It needs no toolchain.
type IncludeFlagStrategy struct{}

func (s *IncludeFlagStrategy) Candidates(ctx context.Context, project workspace.Project, _ *workspace.Set) ([]Candidate, error) {
	text := readMakefile(ctx, project)
	if text == "" {
		return nil, nil
	}

	var out []Candidate
	for _, flag := range makefile.IncludeFlags(text) {
		out = append(out, Candidate{
			Project:  project.Name,
			Path:     flag.Path,
			Evidence: makefileEvidence(project, flag.Line),
			Strategy: StrategyIncludeFlag,
		})
	}
	return out, nil
}
