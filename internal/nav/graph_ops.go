package nav

import (
	"sort"

	"github.com/skelly-dev/makegraph/internal/graph"
)

func CollectDependencies(l *Lookup, node *ProjectNode) []EdgeRecord {
	out := make([]EdgeRecord, 0, len(node.OutEdges))
	for _, name := range node.OutEdges {
		target := l.ByName[name]
		if target == nil {
			continue
		}
		out = append(out, EdgeRecord{
			Project:  RecordFromNode(target),
			Evidence: l.EvidenceFor(node.Name, name),
		})
	}
	return out
}

func CollectDependents(l *Lookup, node *ProjectNode) []EdgeRecord {
	out := make([]EdgeRecord, 0, len(node.InEdges))
	for _, name := range node.InEdges {
		source := l.ByName[name]
		if source == nil {
			continue
		}
		out = append(out, EdgeRecord{
			Project:  RecordFromNode(source),
			Evidence: l.EvidenceFor(name, node.Name),
		})
	}
	return out
}

// TransitiveDependents returns every project that reaches node through
// dependency edges, node excluded.
func TransitiveDependents(l *Lookup, node *ProjectNode) []ProjectRecord {
	out := make([]ProjectRecord, 0)
	for _, name := range graph.Dependents(l.Edges, []string{node.Name}) {
		if name == node.Name {
			continue
		}
		if dependent := l.ByName[name]; dependent != nil {
			out = append(out, RecordFromNode(dependent))
		}
	}
	return out
}

// Trace walks outgoing edges breadth-first up to depth hops.
func Trace(l *Lookup, start *ProjectNode, depth int) []TraceHop {
	type queueItem struct {
		name  string
		depth int
	}
	queue := []queueItem{{name: start.Name, depth: 0}}
	seenDepth := map[string]int{start.Name: 0}
	hops := make([]TraceHop, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= depth {
			continue
		}

		fromNode := l.ByName[current.name]
		if fromNode == nil {
			continue
		}

		for _, next := range fromNode.OutEdges {
			toNode := l.ByName[next]
			if toNode == nil {
				continue
			}
			nextDepth := current.depth + 1
			hops = append(hops, TraceHop{
				Depth:    nextDepth,
				From:     RecordFromNode(fromNode),
				To:       RecordFromNode(toNode),
				Evidence: l.EvidenceFor(fromNode.Name, toNode.Name),
			})
			if previousDepth, exists := seenDepth[next]; !exists || nextDepth < previousDepth {
				seenDepth[next] = nextDepth
				queue = append(queue, queueItem{name: next, depth: nextDepth})
			}
		}
	}

	sort.Slice(hops, func(i, j int) bool {
		if hops[i].Depth != hops[j].Depth {
			return hops[i].Depth < hops[j].Depth
		}
		if hops[i].From.Name != hops[j].From.Name {
			return hops[i].From.Name < hops[j].From.Name
		}
		return hops[i].To.Name < hops[j].To.Name
	})
	return hops
}

func ShortestPath(lookup *Lookup, from, to string) []string {
	if from == to {
		return []string{from}
	}

	queue := []string{from}
	visited := map[string]bool{from: true}
	parent := map[string]string{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := lookup.ByName[current]
		if node == nil {
			continue
		}
		for _, next := range node.OutEdges {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			if next == to {
				return ReconstructPath(parent, from, to)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

func ReconstructPath(parent map[string]string, from, to string) []string {
	out := []string{to}
	for current := to; current != from; {
		prev, ok := parent[current]
		if !ok {
			return nil
		}
		out = append(out, prev)
		current = prev
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
