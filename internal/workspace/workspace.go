// Package workspace discovers Makefile projects and answers "which project
// owns this path" for dependency resolution.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/skelly-dev/makegraph/internal/ctxlog"
	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/naming"
	"github.com/skelly-dev/makegraph/internal/source"
)

// Project is one directory holding a Makefile.
type Project struct {
	Root     string `json:"root"` // workspace-relative, slash-separated, "." for the workspace root
	Name     string `json:"name"`
	Dir      string `json:"-"` // absolute directory
	Makefile string `json:"-"` // absolute Makefile path
}

// NewProject describes the project whose Makefile is makefilePath.
func NewProject(workspaceRoot, makefilePath string, namer naming.Namer) (Project, error) {
	absMakefile, err := filepath.Abs(makefilePath)
	if err != nil {
		return Project{}, fmt.Errorf("failed to resolve %s: %w", makefilePath, err)
	}
	absRoot, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return Project{}, fmt.Errorf("failed to resolve workspace root %s: %w", workspaceRoot, err)
	}

	dir := filepath.Dir(absMakefile)
	rel, err := filepath.Rel(absRoot, dir)
	if err != nil {
		return Project{}, fmt.Errorf("makefile %s is outside workspace %s: %w", makefilePath, workspaceRoot, err)
	}
	rel = filepath.ToSlash(rel)

	return Project{
		Root:     rel,
		Name:     namer.Name(rel),
		Dir:      dir,
		Makefile: absMakefile,
	}, nil
}

// Set is the read-only table of known projects.
type Set struct {
	WorkspaceRoot string
	projects      []Project
	byDir         map[string]int
	byName        map[string]int
	nameCount     map[string]int
}

// NewSet indexes projects. When two projects share a name, the one with the
// lexically smaller root keeps it in the name index.
func NewSet(workspaceRoot string, projects []Project) *Set {
	sorted := append([]Project(nil), projects...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Root < sorted[j].Root
	})

	s := &Set{
		WorkspaceRoot: filepath.Clean(workspaceRoot),
		projects:      sorted,
		byDir:         make(map[string]int, len(sorted)),
		byName:        make(map[string]int, len(sorted)),
		nameCount:     make(map[string]int, len(sorted)),
	}
	for i, p := range sorted {
		s.byDir[filepath.Clean(p.Dir)] = i
		s.nameCount[p.Name]++
		if _, exists := s.byName[p.Name]; !exists {
			s.byName[p.Name] = i
		}
	}
	return s
}

// Projects returns all projects sorted by root.
func (s *Set) Projects() []Project {
	return append([]Project(nil), s.projects...)
}

// Len returns the number of projects.
func (s *Set) Len() int {
	return len(s.projects)
}

// Lookup finds a project by name.
func (s *Set) Lookup(name string) (Project, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Project{}, false
	}
	return s.projects[idx], true
}

// Ambiguous reports whether more than one project carries name.
func (s *Set) Ambiguous(name string) bool {
	return s.nameCount[name] > 1
}

// Names returns every project name, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Roots returns every project root, sorted.
func (s *Set) Roots() []string {
	roots := make([]string, 0, len(s.projects))
	for _, p := range s.projects {
		roots = append(roots, p.Root)
	}
	return roots
}

// Owner returns the project whose directory is the longest prefix of
// absPath, so a nested project wins over its parent.
func (s *Set) Owner(absPath string) (Project, bool) {
	dir := filepath.Clean(absPath)
	for {
		if idx, ok := s.byDir[dir]; ok {
			return s.projects[idx], true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Project{}, false
		}
		dir = parent
	}
}

// Select returns the projects named in names, in set order. A nil names
// slice selects everything.
func (s *Set) Select(names []string) []Project {
	if names == nil {
		return s.Projects()
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	var out []Project
	for _, p := range s.projects {
		if want[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// Discover walks workspaceRoot and returns every project found. Directories
// that cannot be listed are reported as issues.
func Discover(ctx context.Context, workspaceRoot string, namer naming.Namer, matcher *ignore.Matcher) (*Set, []source.Issue, error) {
	absRoot, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve workspace root %q: %w", workspaceRoot, err)
	}

	logger := ctxlog.FromContext(ctx)
	var projects []Project
	var issues []source.Issue

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot && d == nil {
				return err
			}
			rel, _ := filepath.Rel(absRoot, path)
			issues = append(issues, source.Issue{
				File:     filepath.ToSlash(rel),
				Severity: source.SeverityWarning,
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			logger.Debug("skipping unreadable directory", "path", path, "error", err)
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr == nil && matcher.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
		}

		mk, ok := makefile.Find(path)
		if !ok {
			return nil
		}
		project, projErr := NewProject(absRoot, mk, namer)
		if projErr != nil {
			return projErr
		}
		projects = append(projects, project)
		return nil
	})
	if walkErr != nil {
		return nil, issues, fmt.Errorf("failed to scan workspace %s: %w", absRoot, walkErr)
	}

	source.SortIssues(issues)
	return NewSet(absRoot, projects), issues, nil
}
