// Package naming derives canonical project identifiers from project roots.
package naming

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// RootName is the identifier of the project living at the workspace root.
const RootName = "root"

// DefaultGroupDirs are top-level directories whose direct children are named
// without the grouping prefix.
var DefaultGroupDirs = []string{"examples"}

// Namer maps workspace-relative project roots to identifiers. It holds no
// state besides its configuration, so the same root always yields the same name.
type Namer struct {
	groups map[string]bool
}

// NewNamer creates a namer that treats groupDirs as grouping directories.
func NewNamer(groupDirs []string) Namer {
	groups := make(map[string]bool, len(groupDirs))
	for _, dir := range groupDirs {
		dir = strings.Trim(filepath.ToSlash(strings.TrimSpace(dir)), "/")
		if dir != "" {
			groups[dir] = true
		}
	}
	return Namer{groups: groups}
}

// Name returns the identifier for a project root relative to the workspace root.
func (n Namer) Name(root string) string {
	segments := Segments(root)
	switch {
	case len(segments) == 0:
		return RootName
	case len(segments) == 1:
		return segments[0]
	case len(segments) == 2 && n.groups[segments[0]]:
		return segments[1]
	default:
		return strings.Join(segments, "-")
	}
}

// Name applies the default grouping directories.
func Name(root string) string {
	return NewNamer(DefaultGroupDirs).Name(root)
}

// Segments splits a workspace-relative root into clean path segments. The
// workspace root itself ("", ".", "./") has no segments.
func Segments(root string) []string {
	root = filepath.ToSlash(strings.TrimSpace(root))
	if root == "" {
		return nil
	}
	root = strings.Trim(path.Clean(root), "/")
	if root == "." || root == "" {
		return nil
	}
	return strings.Split(root, "/")
}

// Collisions reports identifiers shared by more than one root, e.g. a
// directory literally named "a-b" next to a nested "a/b". Names are not
// disambiguated; callers only surface the report.
func (n Namer) Collisions(roots []string) map[string][]string {
	byName := make(map[string][]string, len(roots))
	for _, root := range roots {
		name := n.Name(root)
		byName[name] = append(byName[name], root)
	}

	out := make(map[string][]string)
	for name, owners := range byName {
		if len(owners) < 2 {
			continue
		}
		sort.Strings(owners)
		out[name] = owners
	}
	return out
}
