package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes name with args in dir and returns its standard output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs the command as a subprocess. Standard error is discarded:
// a failing compile only means the file contributes no dependencies.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// DependencyArgs builds the "-MM" invocation for file with includeDirs.
func DependencyArgs(file string, includeDirs []string) []string {
	args := make([]string, 0, len(includeDirs)+2)
	args = append(args, "-MM")
	for _, dir := range includeDirs {
		args = append(args, "-I"+dir)
	}
	return append(args, file)
}

// DependencyList asks compiler which headers file (relative to dir)
// includes and returns them relative to dir. A compiler that vanished from
// the system is reported as *ConfigError; any other failure is returned as is
// for the caller to treat as "no dependencies".
func DependencyList(ctx context.Context, run Runner, compiler, dir, file string, includeDirs []string) ([]string, error) {
	if run == nil {
		run = ExecRunner
	}

	out, err := run(ctx, dir, compiler, DependencyArgs(file, includeDirs)...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &ConfigError{Compiler: compiler, Err: err}
		}
		return nil, err
	}

	self := filepath.ToSlash(filepath.Clean(file))
	var headers []string
	for _, dep := range ParseDependencyOutput(out) {
		dep = NormalizeHeaderPath(dir, dep)
		if dep == "" || dep == self {
			continue
		}
		headers = append(headers, dep)
	}
	return headers, nil
}

// ParseDependencyOutput flattens make-style dependency output
// ("target: dep1 dep2 \<newline> dep3") into the list of prerequisites.
func ParseDependencyOutput(out []byte) []string {
	text := string(bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n")))
	text = strings.ReplaceAll(text, "\\\n", " ")

	var deps []string
	for _, line := range strings.Split(text, "\n") {
		idx := ruleColon(line)
		if idx < 0 {
			continue
		}
		deps = append(deps, splitEscaped(line[idx+1:])...)
	}
	return deps
}

// ruleColon finds the colon separating targets from prerequisites, skipping
// drive letters such as "C:\".
func ruleColon(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ':' {
			continue
		}
		if i == 1 && i+1 < len(line) && (line[i+1] == '\\' || line[i+1] == '/') {
			continue
		}
		return i
	}
	return -1
}

// splitEscaped splits on whitespace, honouring "\ " escapes in file names.
func splitEscaped(s string) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\\' && i+1 < len(s) && s[i+1] == ' ':
			cur.WriteByte(' ')
			i++
		case ch == ' ' || ch == '\t':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(ch)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// NormalizeHeaderPath maps a compiler-reported path to a slash-separated
// path relative to projectDir.
func NormalizeHeaderPath(projectDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(projectDir, p)
		if err != nil {
			return filepath.ToSlash(p)
		}
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filepath.Clean(p))
}
