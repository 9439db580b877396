package languages

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/skelly-dev/makegraph/internal/source"
)

// TreeSitterExtractor finds preproc_include nodes in a tree-sitter syntax
// tree. The grammar keeps comments and string literals as separate nodes, so
// "#include" text inside them is never reported.
type TreeSitterExtractor struct {
	mu       sync.Mutex // sitter.Parser is not safe for concurrent use
	parser   *sitter.Parser
	language string
	exts     []string
}

// NewCExtractor creates an extractor backed by the tree-sitter C grammar.
func NewCExtractor() *TreeSitterExtractor {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())
	return &TreeSitterExtractor{
		parser:   p,
		language: "c",
		exts:     []string{".c", ".h"},
	}
}

// NewCPPExtractor creates an extractor backed by the tree-sitter C++ grammar.
func NewCPPExtractor() *TreeSitterExtractor {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &TreeSitterExtractor{
		parser:   p,
		language: "cpp",
		exts:     []string{".cc", ".cpp", ".cxx", ".c++", ".hh", ".hpp", ".hxx", ".h++", ".ipp", ".tpp", ".inl"},
	}
}

func (e *TreeSitterExtractor) Language() string {
	return e.language
}

func (e *TreeSitterExtractor) Extensions() []string {
	return e.exts
}

func (e *TreeSitterExtractor) Extract(filename string, content []byte) ([]source.Include, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var includes []source.Include
	collectIncludes(tree.RootNode(), content, &includes)
	return includes, nil
}

func collectIncludes(node *sitter.Node, content []byte, out *[]source.Include) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "comment", "string_literal", "raw_string_literal", "char_literal":
		return
	case "preproc_include":
		if inc, ok := includeFromNode(node, content); ok {
			*out = append(*out, inc)
		}
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectIncludes(node.NamedChild(i), content, out)
	}
}

func includeFromNode(node *sitter.Node, content []byte) (source.Include, bool) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return source.Include{}, false
	}

	raw := strings.TrimSpace(pathNode.Content(content))
	inc := source.Include{Line: int(node.StartPoint().Row) + 1}
	switch pathNode.Type() {
	case "system_lib_string":
		inc.System = true
		inc.Path = strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	case "string_literal":
		inc.Path = strings.Trim(raw, `"`)
	default:
		// #include MACRO: nothing to resolve statically.
		return source.Include{}, false
	}
	if inc.Path == "" {
		return source.Include{}, false
	}
	return inc, true
}
