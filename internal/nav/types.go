package nav

import "github.com/skelly-dev/makegraph/internal/depmap"

type ProjectNode struct {
	Name     string
	Root     string
	OutEdges []string
	InEdges  []string
	Evidence map[string]string // target -> evidence of the outgoing edge
}

type Lookup struct {
	ByName map[string]*ProjectNode
	ByRoot map[string]string
	Edges  []depmap.Dependency
}

type ProjectRecord struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

type EdgeRecord struct {
	Project  ProjectRecord `json:"project"`
	Evidence string        `json:"evidence,omitempty"`
}

type TraceHop struct {
	Depth    int           `json:"depth"`
	From     ProjectRecord `json:"from"`
	To       ProjectRecord `json:"to"`
	Evidence string        `json:"evidence,omitempty"`
}
