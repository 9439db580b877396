package languages

import (
	"bytes"
	"regexp"

	"github.com/skelly-dev/makegraph/internal/source"
)

// TextExtractor handles preprocessed files without a tree-sitter grammar
// (Objective-C, assembler, .inc/.def fragments). Comments and the contents of
// string and character literals are blanked before directives are matched.
type TextExtractor struct{}

// NewTextExtractor creates the fallback extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (t *TextExtractor) Language() string {
	return "preprocessed"
}

func (t *TextExtractor) Extensions() []string {
	return []string{".m", ".mm", ".s", ".inc", ".def"}
}

var includeDirective = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*(?:include_next|include|import)[ \t]*(?:"([^"\n]+)"|<([^>\n]+)>)`)

func (t *TextExtractor) Extract(filename string, content []byte) ([]source.Include, error) {
	return ScanIncludes(content), nil
}

// ScanIncludes matches include directives in content after stripping
// comments and literals.
func ScanIncludes(content []byte) []source.Include {
	stripped := StripCommentsAndLiterals(content)

	var out []source.Include
	for _, m := range includeDirective.FindAllSubmatchIndex(stripped, -1) {
		line := bytes.Count(stripped[:m[0]], []byte{'\n'}) + 1
		inc := source.Include{Line: line}
		if m[2] >= 0 {
			inc.Path = string(stripped[m[2]:m[3]])
		} else {
			inc.System = true
			inc.Path = string(stripped[m[4]:m[5]])
		}
		out = append(out, inc)
	}
	return out
}

const (
	stNormal = iota
	stLineComment
	stBlockComment
	stString
	stChar
	stRawString
)

// StripCommentsAndLiterals removes comments (keeping newlines so line numbers
// survive) and empties string and character literals. Literals on an include
// directive line are kept: they are the include path.
func StripCommentsAndLiterals(src []byte) []byte {
	out := make([]byte, 0, len(src))
	state := stNormal
	directive := startsIncludeDirective(src, 0)
	var rawClose []byte

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if ch == '\n' {
			out = append(out, '\n')
			switch state {
			case stLineComment, stString, stChar:
				state = stNormal
			}
			directive = state == stNormal && startsIncludeDirective(src, i+1)
			continue
		}

		switch state {
		case stLineComment:
			// dropped
		case stBlockComment:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				out = append(out, ' ')
				state = stNormal
				i++
			}
		case stString, stChar:
			quote := byte('"')
			if state == stChar {
				quote = '\''
			}
			if ch == '\\' && i+1 < len(src) {
				if src[i+1] == '\n' {
					// Escaped newline continues the literal.
					out = append(out, '\n')
				} else if directive {
					out = append(out, ch, src[i+1])
				}
				i++
				continue
			}
			if ch == quote {
				out = append(out, ch)
				state = stNormal
				continue
			}
			if directive {
				out = append(out, ch)
			}
		case stRawString:
			if ch == ')' && bytes.HasPrefix(src[i:], rawClose) {
				out = append(out, '"')
				i += len(rawClose) - 1
				state = stNormal
			}
		default:
			switch {
			case ch == '/' && i+1 < len(src) && src[i+1] == '/':
				out = append(out, ' ')
				state = stLineComment
				i++
			case ch == '/' && i+1 < len(src) && src[i+1] == '*':
				out = append(out, ' ')
				state = stBlockComment
				i++
			case ch == '"' && i > 0 && src[i-1] == 'R':
				if open := bytes.IndexByte(src[i+1:], '('); open >= 0 && open <= 16 {
					delim := src[i+1 : i+1+open]
					rawClose = append(append([]byte{')'}, delim...), '"')
					out = append(out, '"')
					state = stRawString
					i += open + 1
				} else {
					out = append(out, ch)
					state = stString
				}
			case ch == '"':
				out = append(out, ch)
				state = stString
			case ch == '\'' && !(i > 0 && isAlnum(src[i-1])):
				out = append(out, ch)
				state = stChar
			default:
				out = append(out, ch)
			}
		}
	}
	return out
}

// startsIncludeDirective reports whether the line starting at pos is an
// #include, #include_next or #import directive.
func startsIncludeDirective(src []byte, pos int) bool {
	i := skipBlank(src, pos)
	if i >= len(src) || src[i] != '#' {
		return false
	}
	i = skipBlank(src, i+1)
	rest := src[i:]
	return bytes.HasPrefix(rest, []byte("include")) || bytes.HasPrefix(rest, []byte("import"))
}

func skipBlank(src []byte, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}

func isAlnum(ch byte) bool {
	return ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}
