// Package makefile is a tolerant, line-oriented Makefile scanner. It does not
// understand variables, pattern rules, conditionals or continuation lines;
// lines it cannot recognize are skipped, never reported as errors.
package makefile

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// Target is a rule whose name matched the target pattern.
type Target struct {
	Name          string
	Prerequisites []string // raw tokens after the colon, minus obvious noise
	Line          int      // line of the winning (last) definition
}

// Makefile is the result of scanning one Makefile.
type Makefile struct {
	Path    string
	Targets []Target // in order of first appearance
	index   map[string]int
}

// New creates an empty Makefile.
func New(path string) *Makefile {
	return &Makefile{Path: path, index: make(map[string]int)}
}

// targetLine matches "<identifier>:<rest>" at the very start of a line.
var targetLine = regexp.MustCompile(`^([A-Za-z0-9_-]+):(.*)$`)

// Parse scans Makefile text for targets and their prerequisite tokens.
func Parse(text string) *Makefile {
	mf := New("")
	forEachLine(text, func(lineNo int, line string) {
		m := targetLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		name, rest := m[1], m[2]
		if !IsTargetName(name) {
			return
		}
		// "NAME:=value" and "NAME::=value" are assignments, not rules.
		if strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, ":=") || strings.HasPrefix(rest, "::=") {
			return
		}
		mf.set(Target{
			Name:          name,
			Prerequisites: prerequisiteTokens(stripComment(rest)),
			Line:          lineNo,
		})
	})
	return mf
}

// ParseFile reads and parses the Makefile at path. A missing or unreadable
// file yields a Makefile without targets.
func ParseFile(path string) *Makefile {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(path)
	}
	mf := Parse(string(data))
	mf.Path = path
	return mf
}

// IsTargetName reports whether name may be exposed as a project target.
// Special targets (".PHONY", ".SUFFIXES") and "_"-prefixed helpers are hidden.
func IsTargetName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "_")
}

// Target returns the target named name.
func (m *Makefile) Target(name string) (Target, bool) {
	idx, ok := m.index[name]
	if !ok {
		return Target{}, false
	}
	return m.Targets[idx], true
}

// HasTarget reports whether name is a parsed target.
func (m *Makefile) HasTarget(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Names returns target names in first-appearance order.
func (m *Makefile) Names() []string {
	names := make([]string, 0, len(m.Targets))
	for _, target := range m.Targets {
		names = append(names, target.Name)
	}
	return names
}

// Prerequisites returns the target -> raw prerequisite token mapping.
func (m *Makefile) Prerequisites() map[string][]string {
	out := make(map[string][]string, len(m.Targets))
	for _, target := range m.Targets {
		out[target.Name] = target.Prerequisites
	}
	return out
}

// set records target; a redefinition replaces the earlier prerequisites but
// keeps the original position.
func (m *Makefile) set(target Target) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if idx, ok := m.index[target.Name]; ok {
		m.Targets[idx] = target
		return
	}
	m.index[target.Name] = len(m.Targets)
	m.Targets = append(m.Targets, target)
}

func prerequisiteTokens(rest string) []string {
	fields := strings.Fields(rest)
	out := make([]string, 0, len(fields))
	for _, token := range fields {
		if keepPrerequisite(token) {
			out = append(out, token)
		}
	}
	return out
}

func keepPrerequisite(token string) bool {
	switch {
	case token == "":
		return false
	case strings.Contains(token, "$"):
		return false
	case strings.HasPrefix(token, "/"), strings.HasPrefix(token, "@"), strings.HasPrefix(token, `"`):
		return false
	}
	return true
}

func forEachLine(text string, fn func(lineNo int, line string)) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fn(lineNo, strings.TrimRight(scanner.Text(), "\r"))
	}
}
