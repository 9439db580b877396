// Package graph runs the two passes that produce the project graph: node
// building (one project per Makefile, with its targets) and dependency
// building (include strategies resolved into project edges).
package graph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	graphlib "github.com/dominikbraun/graph"
	"golang.org/x/sync/errgroup"

	"github.com/skelly-dev/makegraph/internal/ctxlog"
	"github.com/skelly-dev/makegraph/internal/depmap"
	"github.com/skelly-dev/makegraph/internal/include"
	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/naming"
	"github.com/skelly-dev/makegraph/internal/targets"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// Node is one project in the graph
type Node struct {
	Root     string                 `json:"root" yaml:"root"`
	Name     string                 `json:"name" yaml:"name"`
	Makefile string                 `json:"makefile" yaml:"makefile"`
	Targets  []targets.TargetConfig `json:"targets" yaml:"targets"`
	OutEdges []string               `json:"dependencies,omitempty" yaml:"dependencies,omitempty"` // projects this one depends on
	InEdges  []string               `json:"dependents,omitempty" yaml:"dependents,omitempty"`     // projects that depend on this one
	PageRank float64                `json:"rank,omitempty" yaml:"rank,omitempty"`                 // importance score
}

// Graph is the project graph
type Graph struct {
	Nodes map[string]*Node // root -> node
	Edges []depmap.Dependency

	byName map[string]*Node // smallest root wins on a shared name
}

// BuildNode parses one Makefile into a project node. It reads only that
// file and is safe to call concurrently.
func BuildNode(workspaceRoot, makefilePath string, namer naming.Namer) (*Node, error) {
	project, err := workspace.NewProject(workspaceRoot, makefilePath, namer)
	if err != nil {
		return nil, err
	}
	return nodeFor(workspaceRoot, project), nil
}

// BuildNodes builds a node for every project in set, at most jobs at a
// time, sorted by root.
func BuildNodes(ctx context.Context, set *workspace.Set, jobs int) ([]*Node, error) {
	projects := set.Projects()
	nodes := make([]*Node, len(projects))

	g, _ := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, project := range projects {
		i, project := i, project
		g.Go(func() error {
			nodes[i] = nodeFor(set.WorkspaceRoot, project)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("built project nodes", "count", len(nodes))
	return nodes, nil
}

func nodeFor(workspaceRoot string, project workspace.Project) *Node {
	mf := makefile.ParseFile(project.Makefile)
	rel, err := filepath.Rel(workspaceRoot, project.Makefile)
	if err != nil {
		rel = project.Makefile
	}
	return &Node{
		Root:     project.Root,
		Name:     project.Name,
		Makefile: filepath.ToSlash(rel),
		Targets:  targets.Assemble(project, mf),
		OutEdges: make([]string, 0),
		InEdges:  make([]string, 0),
	}
}

// DependencyResult is the outcome of a dependency pass.
type DependencyResult struct {
	Dependencies []depmap.Dependency
	Dropped      []depmap.Resolution
	Visited      []string // names of the projects that were scanned
}

// BuildDependencies runs every strategy over the projects in set named by
// only (all projects when only is nil) and resolves the candidates against
// the whole set. A missing toolchain aborts the pass; nothing else does.
func BuildDependencies(ctx context.Context, set *workspace.Set, strategies []include.Strategy, only []string) (*DependencyResult, error) {
	logger := ctxlog.FromContext(ctx)
	mapper := depmap.NewMapper(set)
	result := &DependencyResult{}

	for _, project := range set.Select(only) {
		result.Visited = append(result.Visited, project.Name)
		for _, strategy := range strategies {
			candidates, err := strategy.Candidates(ctx, project, set)
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", project.Root, err)
			}
			for _, res := range mapper.AddAll(candidates) {
				if res.Ok() || res.Dropped == depmap.NotCandidate {
					continue
				}
				logger.Debug("dropped dependency",
					"project", project.Name,
					"path", res.Candidate.Path,
					"evidence", res.Candidate.Evidence,
					"reason", string(res.Dropped),
				)
				result.Dropped = append(result.Dropped, res)
			}
		}
	}

	result.Dependencies = mapper.Dependencies()
	return result, nil
}

// New links nodes with deps. Edges naming unknown nodes are skipped. Every
// node is kept, including nodes whose names collide; edges attach to the
// node with the smallest root for a shared name.
func New(nodes []*Node, deps []depmap.Dependency) *Graph {
	g := &Graph{
		Nodes:  make(map[string]*Node, len(nodes)),
		byName: make(map[string]*Node, len(nodes)),
	}
	for _, node := range nodes {
		if node.OutEdges == nil {
			node.OutEdges = make([]string, 0)
		}
		if node.InEdges == nil {
			node.InEdges = make([]string, 0)
		}
		g.Nodes[node.Root] = node
		if owner, ok := g.byName[node.Name]; !ok || node.Root < owner.Root {
			g.byName[node.Name] = node
		}
	}

	for _, dep := range deps {
		src, ok := g.byName[dep.Source]
		if !ok {
			continue
		}
		dst, ok := g.byName[dep.Target]
		if !ok || src == dst {
			continue
		}
		src.OutEdges = append(src.OutEdges, dst.Name)
		dst.InEdges = append(dst.InEdges, src.Name)
		g.Edges = append(g.Edges, dep)
	}

	g.normalizeEdges()
	depmap.Sort(g.Edges)
	g.calculatePageRank(20, 0.85)
	return g
}

// Node returns the node edges attach to for name.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.byName[name]
	return node, ok
}

// SortedNodes returns nodes ordered by root.
func (g *Graph) SortedNodes() []*Node {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Root < nodes[j].Root
	})
	return nodes
}

// calculatePageRank scores projects so that widely used libraries rank first
func (g *Graph) calculatePageRank(iterations int, dampingFactor float64) {
	n := float64(len(g.Nodes))
	if n == 0 {
		return
	}

	for _, node := range g.Nodes {
		node.PageRank = 1.0 / n
	}

	for i := 0; i < iterations; i++ {
		newRanks := make(map[string]float64, len(g.Nodes))

		for root, node := range g.Nodes {
			rank := (1 - dampingFactor) / n

			// A dependency receives rank from the projects that use it.
			for _, inName := range node.InEdges {
				if inNode, ok := g.byName[inName]; ok {
					outDegree := float64(len(inNode.OutEdges))
					if outDegree > 0 {
						rank += dampingFactor * (inNode.PageRank / outDegree)
					}
				}
			}

			newRanks[root] = rank
		}

		for root, rank := range newRanks {
			g.Nodes[root].PageRank = rank
		}
	}
}

// TopNodes returns the most depended-upon projects by PageRank
func (g *Graph) TopNodes(n int) []*Node {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		nodes = append(nodes, node)
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].PageRank == nodes[j].PageRank {
			return nodes[i].Root < nodes[j].Root
		}
		return nodes[i].PageRank > nodes[j].PageRank
	})

	if n > len(nodes) {
		n = len(nodes)
	}
	return nodes[:n]
}

func (g *Graph) normalizeEdges() {
	for _, node := range g.Nodes {
		node.OutEdges = dedupeAndSort(node.OutEdges)
		node.InEdges = dedupeAndSort(node.InEdges)
	}
}

// Dependents returns the reverse dependency closure of names, names
// included, sorted.
func Dependents(deps []depmap.Dependency, names []string) []string {
	reverse := make(map[string][]string)
	for _, dep := range deps {
		reverse[dep.Target] = append(reverse[dep.Target], dep.Source)
	}

	impacted := make(map[string]bool)
	queue := make([]string, 0, len(names))
	for _, name := range names {
		if !impacted[name] {
			impacted[name] = true
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dependent := range reverse[name] {
			if impacted[dependent] {
				continue
			}
			impacted[dependent] = true
			queue = append(queue, dependent)
		}
	}

	out := make([]string, 0, len(impacted))
	for name := range impacted {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Cycles returns every group of projects that depend on each other, each
// group sorted, groups ordered by their first member.
func Cycles(deps []depmap.Dependency) ([][]string, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, dep := range deps {
		_ = g.AddVertex(dep.Source)
		_ = g.AddVertex(dep.Target)
	}
	for _, dep := range deps {
		if err := g.AddEdge(dep.Source, dep.Target); err != nil && !isDuplicateEdge(err) {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", dep.Source, dep.Target, err)
		}
	}

	components, err := graphlib.StronglyConnectedComponents(g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute cycles: %w", err)
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		cycles = append(cycles, component)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}

func dedupeAndSort(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func isDuplicateEdge(err error) bool {
	return errors.Is(err, graphlib.ErrEdgeAlreadyExists)
}
