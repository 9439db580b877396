package source

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/makefile"
)

// WalkOptions controls which parts of a project tree are visited.
type WalkOptions struct {
	// WorkspaceRoot anchors ignore rules; defaults to the project directory.
	WorkspaceRoot string
	Matcher       *ignore.Matcher
	// Accept filters files by name; nil accepts everything.
	Accept func(name string) bool
}

// ProjectFiles lists files below projectDir, relative to it and sorted.
// Ignored directories and subdirectories holding their own Makefile are
// not entered: those belong to another project. Unlistable directories are
// reported as issues.
func ProjectFiles(projectDir string, opts WalkOptions) ([]string, []Issue) {
	workspaceRoot := opts.WorkspaceRoot
	if workspaceRoot == "" {
		workspaceRoot = projectDir
	}

	var files []string
	var issues []Issue

	_ = filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			issues = append(issues, issueFor(projectDir, path, err))
			if d != nil && d.IsDir() && path != projectDir {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == projectDir {
				return nil
			}
			if rel, relErr := filepath.Rel(workspaceRoot, path); relErr == nil && opts.Matcher.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			if _, nested := makefile.Find(path); nested {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if rel, relErr := filepath.Rel(workspaceRoot, path); relErr == nil && opts.Matcher.ShouldIgnore(rel, false) {
			return nil
		}
		if opts.Accept != nil && !opts.Accept(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(projectDir, path)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	sort.Strings(files)
	SortIssues(issues)
	return files, issues
}
