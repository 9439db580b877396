// Package output encodes project nodes and dependency edges for the host
// orchestrator.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skelly-dev/makegraph/internal/depmap"
	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/graph"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a --format value. The empty string means json.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSONL:
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: json, yaml, jsonl)", value)
	}
}

// Document is everything one command emits. Either part may be empty.
type Document struct {
	Nodes        []*graph.Node       `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Dependencies []depmap.Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Cycles       [][]string          `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// Record is one jsonl line.
type Record struct {
	Kind       string             `json:"kind"`
	Node       *graph.Node        `json:"node,omitempty"`
	Dependency *depmap.Dependency `json:"dependency,omitempty"`
	Cycle      []string           `json:"cycle,omitempty"`
}

const (
	KindNode       = "node"
	KindDependency = "dependency"
	KindCycle      = "cycle"
)

// Encode renders doc in format.
func Encode(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		if err := fileutil.PrintJSON(&buf, doc); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSONL:
		var buf bytes.Buffer
		if err := WriteJSONL(&buf, doc); err != nil {
			return nil, fmt.Errorf("failed to encode jsonl: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSONL streams doc to w one record per line: nodes, then edges, then
// cycles. Output is deterministic for a given doc.
func WriteJSONL(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	for _, node := range doc.Nodes {
		if err := encoder.Encode(Record{Kind: KindNode, Node: node}); err != nil {
			return fmt.Errorf("node %s: %w", node.Root, err)
		}
	}
	for i := range doc.Dependencies {
		dep := &doc.Dependencies[i]
		if err := encoder.Encode(Record{Kind: KindDependency, Dependency: dep}); err != nil {
			return fmt.Errorf("dependency %s -> %s: %w", dep.Source, dep.Target, err)
		}
	}
	for _, cycle := range doc.Cycles {
		if err := encoder.Encode(Record{Kind: KindCycle, Cycle: cycle}); err != nil {
			return fmt.Errorf("cycle %v: %w", cycle, err)
		}
	}
	return nil
}
