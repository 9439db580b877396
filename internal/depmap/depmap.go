// Package depmap turns include candidates into validated project
// dependencies. Invalid candidates are recorded with a reason and never
// fail the pass.
package depmap

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"

	"github.com/skelly-dev/makegraph/internal/include"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// TypeStatic marks an edge inferred from static analysis.
const TypeStatic = "static"

const evidenceAttr = "evidence"

// Dependency is one project-to-project edge.
type Dependency struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Type     string `json:"type" yaml:"type"`
	Evidence string `json:"evidence" yaml:"evidence"`
}

// DropReason says why a candidate did not become an edge.
type DropReason string

const (
	Kept          DropReason = ""
	NotCandidate  DropReason = "not-candidate"  // does not start with "../"
	NoProject     DropReason = "no-project"     // resolves outside every known project
	SelfReference DropReason = "self-reference" // resolves back into the source project
	Duplicate     DropReason = "duplicate"      // edge already recorded
	Ambiguous     DropReason = "ambiguous"      // owner name is shared by several projects
	Malformed     DropReason = "malformed"      // unknown source project, empty path or evidence
)

// Resolution is the outcome for one candidate.
type Resolution struct {
	Candidate  include.Candidate
	Dependency Dependency
	Dropped    DropReason
}

// Ok reports whether the candidate produced an edge.
func (r Resolution) Ok() bool {
	return r.Dropped == Kept
}

// Mapper accumulates dependencies for one pass. The first evidence recorded
// for a (source, target) pair wins.
type Mapper struct {
	set   *workspace.Set
	graph graphlib.Graph[string, string]
}

// NewMapper creates a mapper over every project in set.
func NewMapper(set *workspace.Set) *Mapper {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, name := range set.Names() {
		_ = g.AddVertex(name)
	}
	return &Mapper{set: set, graph: g}
}

// Resolve classifies c without recording it.
func (m *Mapper) Resolve(c include.Candidate) Resolution {
	res := Resolution{Candidate: c}

	src, ok := m.set.Lookup(c.Project)
	path := filepath.ToSlash(strings.TrimSpace(c.Path))
	if !ok || path == "" || strings.TrimSpace(c.Evidence) == "" {
		res.Dropped = Malformed
		return res
	}
	if !strings.HasPrefix(path, "../") {
		res.Dropped = NotCandidate
		return res
	}

	owner, ok := m.set.Owner(filepath.Join(src.Dir, filepath.FromSlash(path)))
	switch {
	case !ok:
		res.Dropped = NoProject
		return res
	case owner.Name == src.Name:
		res.Dropped = SelfReference
		return res
	case m.set.Ambiguous(owner.Name) || m.set.Ambiguous(src.Name):
		res.Dropped = Ambiguous
		return res
	}

	res.Dependency = Dependency{
		Source:   src.Name,
		Target:   owner.Name,
		Type:     TypeStatic,
		Evidence: c.Evidence,
	}
	if _, err := m.graph.Edge(src.Name, owner.Name); err == nil {
		res.Dropped = Duplicate
	}
	return res
}

// Add resolves c and records the edge when it is valid.
func (m *Mapper) Add(c include.Candidate) Resolution {
	res := m.Resolve(c)
	if !res.Ok() {
		return res
	}
	res.Dropped = m.addEdge(res.Dependency)
	return res
}

// AddAll adds candidates in order and returns every resolution.
func (m *Mapper) AddAll(candidates []include.Candidate) []Resolution {
	out := make([]Resolution, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, m.Add(c))
	}
	return out
}

// AddDependency records an already resolved edge, such as one reused from
// a previous pass. Edges naming unknown projects are dropped.
func (m *Mapper) AddDependency(dep Dependency) DropReason {
	if dep.Source == dep.Target {
		return SelfReference
	}
	return m.addEdge(dep)
}

func (m *Mapper) addEdge(dep Dependency) DropReason {
	err := m.graph.AddEdge(dep.Source, dep.Target, graphlib.EdgeAttribute(evidenceAttr, dep.Evidence))
	switch {
	case err == nil:
		return Kept
	case errors.Is(err, graphlib.ErrEdgeAlreadyExists):
		return Duplicate
	case errors.Is(err, graphlib.ErrVertexNotFound):
		return NoProject
	default:
		return Malformed
	}
}

// Dependencies returns the recorded edges sorted by source, then target.
func (m *Mapper) Dependencies() []Dependency {
	edges, err := m.graph.Edges()
	if err != nil {
		return nil
	}

	out := make([]Dependency, 0, len(edges))
	for _, e := range edges {
		out = append(out, Dependency{
			Source:   e.Source,
			Target:   e.Target,
			Type:     TypeStatic,
			Evidence: e.Properties.Attributes[evidenceAttr],
		})
	}
	Sort(out)
	return out
}

// Graph exposes the underlying edge store.
func (m *Mapper) Graph() graphlib.Graph[string, string] {
	return m.graph
}

// Union merges edge lists under the same rules: the first evidence for a
// (source, target) pair wins and self-loops are dropped.
func Union(lists ...[]Dependency) []Dependency {
	seen := make(map[[2]string]bool)
	var out []Dependency
	for _, list := range lists {
		for _, dep := range list {
			key := [2]string{dep.Source, dep.Target}
			if dep.Source == dep.Target || seen[key] {
				continue
			}
			seen[key] = true
			if dep.Type == "" {
				dep.Type = TypeStatic
			}
			out = append(out, dep)
		}
	}
	Sort(out)
	return out
}

// Sort orders edges by source, then target.
func Sort(deps []Dependency) {
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})
}
