// Package ignore decides which workspace paths the scanners never enter.
package ignore

import (
	"path"
	"regexp"
	"strings"
)

// MetadataRules skip VCS and makegraph metadata. Project discovery applies
// only these plus the user rules.
var MetadataRules = []string{
	".git/",
	".hg/",
	".svn/",
	".makegraph/",
}

// DefaultRules extend MetadataRules with build output and dependency-manager
// trees for source scans. User rules are appended after them, so "!build/"
// re-enables a directory.
var DefaultRules = append(append([]string(nil), MetadataRules...),
	".cache/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"out/",
	"target/",
	"obj/",
	"CMakeFiles/",
	".deps/",
	"__pycache__/",
)

type rule struct {
	re       *regexp.Regexp
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
	nested   bool // pattern contains a slash
}

// Matcher applies gitignore-like rules; the last matching rule wins.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from the default rules plus userRules.
func NewMatcher(userRules []string) *Matcher {
	return newMatcher(DefaultRules, userRules)
}

// NewDiscoveryMatcher builds a matcher from MetadataRules plus userRules.
// Vendored or build-tree projects stay discoverable under it.
func NewDiscoveryMatcher(userRules []string) *Matcher {
	return newMatcher(MetadataRules, userRules)
}

func newMatcher(base, userRules []string) *Matcher {
	all := make([]string, 0, len(base)+len(userRules))
	all = append(all, base...)
	all = append(all, userRules...)

	m := &Matcher{rules: make([]rule, 0, len(all))}
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			m.rules = append(m.rules, parsed)
		}
	}
	return m
}

// ShouldIgnore reports whether the workspace-relative relPath is excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		r.negated = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		r.anchored = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		r.dirOnly = true
		line = rest
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	r.pattern = line
	r.nested = strings.Contains(line, "/")
	r.re = regexp.MustCompile("^" + globToRegex(line) + "$")
	return r, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	if r.dirOnly {
		return r.matchesDirectory(relPath, isDir)
	}
	if r.anchored {
		return r.re.MatchString(relPath)
	}
	if r.nested {
		return r.matchesAnySuffix(relPath)
	}
	for _, segment := range strings.Split(relPath, "/") {
		if r.re.MatchString(segment) {
			return true
		}
	}
	return false
}

// matchesDirectory handles "dir/" rules: the directory itself and everything
// below it are matched.
func (r rule) matchesDirectory(relPath string, isDir bool) bool {
	parts := strings.Split(relPath, "/")
	limit := len(parts)
	if !isDir {
		// A file only matches through one of its parent directories.
		limit--
	}
	for i := 0; i < limit; i++ {
		if r.anchored || r.nested {
			if r.re.MatchString(strings.Join(parts[:i+1], "/")) {
				return true
			}
			continue
		}
		if r.re.MatchString(parts[i]) {
			return true
		}
	}
	return false
}

func (r rule) matchesAnySuffix(relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if r.re.MatchString(strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
