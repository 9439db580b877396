package makefile

import (
	"strings"
)

// Flag is an include search path taken from a "-I" compiler flag.
type Flag struct {
	Path string
	Line int
}

// PathRef is a path-like prerequisite token found on a rule line.
type PathRef struct {
	Path   string
	Target string
	Line   int
}

// IncludeFlags extracts every "-I<path>" (or "-I <path>") flag anywhere in the
// text. Flags whose path uses a Make variable are skipped. Each distinct path
// is reported once, at its first occurrence.
func IncludeFlags(text string) []Flag {
	var out []Flag
	seen := make(map[string]bool)
	forEachLine(text, func(lineNo int, line string) {
		line = stripComment(line)
		tokens := flagTokens(line)
		for i := 0; i < len(tokens); i++ {
			token := tokens[i]
			if !strings.HasPrefix(token, "-I") {
				continue
			}
			path := strings.TrimPrefix(token, "-I")
			if path == "" && i+1 < len(tokens) {
				i++
				path = tokens[i]
			}
			path = strings.Trim(path, `"'`)
			if path == "" || strings.Contains(path, "$") || seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, Flag{Path: path, Line: lineNo})
		}
	})
	return out
}

// PrerequisitePaths returns prerequisite tokens of any rule line (file
// targets such as "foo.o:" included) that climb out of the Makefile's
// directory with "../".
func PrerequisitePaths(text string) []PathRef {
	var out []PathRef
	forEachLine(text, func(lineNo int, line string) {
		if line == "" || line[0] == '\t' || line[0] == ' ' || line[0] == '#' {
			return
		}
		line = stripComment(line)
		left, right, ok := splitRule(line)
		if !ok {
			return
		}
		target := strings.TrimSpace(left)
		for _, token := range prerequisiteTokens(right) {
			if strings.HasPrefix(token, "../") {
				out = append(out, PathRef{Path: token, Target: target, Line: lineNo})
			}
		}
	})
	return out
}

// splitRule splits "targets: prerequisites" at the first colon that is not
// part of an assignment operator.
func splitRule(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	left, right := line[:idx], line[idx+1:]
	if strings.Contains(left, "=") {
		return "", "", false
	}
	if strings.HasPrefix(right, "=") || strings.HasPrefix(right, ":=") {
		return "", "", false
	}
	// Double-colon rules.
	right = strings.TrimPrefix(right, ":")
	// Recipe after ';' is not a prerequisite list.
	if semi := strings.Index(right, ";"); semi >= 0 {
		right = right[:semi]
	}
	return left, right, true
}

func flagTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '='
	})
}

func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}
