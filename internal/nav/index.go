// Package nav answers questions about the dependency edges recorded by the
// last deps run: what a project depends on, what depends on it, and how two
// projects are connected.
package nav

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skelly-dev/makegraph/internal/state"
)

// NewLookup indexes the projects and edges stored in st.
func NewLookup(st *state.State) *Lookup {
	lookup := &Lookup{
		ByName: make(map[string]*ProjectNode, len(st.Projects)),
		ByRoot: make(map[string]string, len(st.Projects)),
		Edges:  st.Dependencies(),
	}
	for name, project := range st.Projects {
		lookup.ByName[name] = &ProjectNode{
			Name:     name,
			Root:     project.Root,
			Evidence: make(map[string]string),
		}
		lookup.ByRoot[project.Root] = name
	}

	for _, dep := range lookup.Edges {
		from := lookup.ByName[dep.Source]
		to := lookup.ByName[dep.Target]
		if from == nil || to == nil {
			continue
		}
		from.OutEdges = append(from.OutEdges, to.Name)
		from.Evidence[to.Name] = dep.Evidence
		to.InEdges = append(to.InEdges, from.Name)
	}
	for _, node := range lookup.ByName {
		sort.Strings(node.OutEdges)
		sort.Strings(node.InEdges)
	}
	return lookup
}

func LoadLookup(rootPath string) (*Lookup, error) {
	st, err := state.Load(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency state: %w", err)
	}
	if len(st.Projects) == 0 {
		return nil, fmt.Errorf("no dependency state at %s (run makegraph deps)", state.Path(rootPath))
	}
	return NewLookup(st), nil
}

// Resolve finds a project by name, or by its workspace-relative root.
func Resolve(l *Lookup, query string) *ProjectNode {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if node, ok := l.ByName[query]; ok {
		return node
	}
	root := path.Clean(filepath.ToSlash(query))
	if name, ok := l.ByRoot[root]; ok {
		return l.ByName[name]
	}
	return nil
}

func ResolveProject(l *Lookup, query string) (*ProjectNode, error) {
	node := Resolve(l, query)
	if node == nil {
		return nil, fmt.Errorf("project %q not found (known: %s)", query, strings.Join(l.Names(), ", "))
	}
	return node, nil
}

// Names returns every project name, sorted.
func (l *Lookup) Names() []string {
	names := make([]string, 0, len(l.ByName))
	for name := range l.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func RecordFromNode(node *ProjectNode) ProjectRecord {
	if node == nil {
		return ProjectRecord{}
	}
	return ProjectRecord{Name: node.Name, Root: node.Root}
}

func (l *Lookup) EvidenceFor(from, to string) string {
	node := l.ByName[from]
	if node == nil {
		return ""
	}
	return node.Evidence[to]
}
