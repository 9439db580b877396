package include

import (
	"context"
	"fmt"

	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/source"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// LexicalStrategy reads #include directives from the project's sources and
// "../" prerequisites from its Makefile rule lines. It never fails.
type LexicalStrategy struct {
	Registry *source.Registry
	Matcher  *ignore.Matcher
}

func (s *LexicalStrategy) Candidates(ctx context.Context, project workspace.Project, set *workspace.Set) ([]Candidate, error) {
	var out []Candidate

	for _, ref := range makefile.PrerequisitePaths(readMakefile(ctx, project)) {
		out = append(out, Candidate{
			Project:  project.Name,
			Path:     ref.Path,
			Evidence: makefileEvidence(project, ref.Line),
			Strategy: StrategyLexical,
		})
	}

	if s.Registry == nil {
		return out, nil
	}

	files, walkIssues := source.ProjectFiles(project.Dir, source.WalkOptions{
		WorkspaceRoot: workspaceRoot(set, project),
		Matcher:       s.Matcher,
		Accept:        s.Registry.Supports,
	})
	logIssues(ctx, project, walkIssues)

	extracted, extractIssues := s.Registry.ExtractProject(project.Dir, files)
	logIssues(ctx, project, extractIssues)

	for _, file := range extracted {
		for _, inc := range file.Includes {
			out = append(out, Candidate{
				Project:  project.Name,
				Path:     inc.Path,
				Evidence: fmt.Sprintf("%s:%d", file.Path, inc.Line),
				Strategy: StrategyLexical,
			})
		}
	}
	return out, nil
}

func workspaceRoot(set *workspace.Set, project workspace.Project) string {
	if set == nil || set.WorkspaceRoot == "" {
		return project.Dir
	}
	return set.WorkspaceRoot
}
