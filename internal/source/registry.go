// Package source walks project trees and extracts include directives from
// source and header files through per-language extractors.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor defines the interface each language must implement.
type Extractor interface {
	// Language returns the language name (e.g., "c", "cpp")
	Language() string

	// Extensions returns file extensions this extractor handles
	Extensions() []string

	// Extract returns the include directives found in content
	Extract(filename string, content []byte) ([]Include, error)
}

// Registry holds extractors keyed by language and file extension.
type Registry struct {
	extractors map[string]Extractor
	extToLang  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		extToLang:  make(map[string]string),
	}
}

// Register adds an extractor; later registrations win for shared extensions.
func (r *Registry) Register(e Extractor) {
	lang := e.Language()
	r.extractors[lang] = e
	for _, ext := range e.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// ExtractorFor returns the extractor responsible for filename.
func (r *Registry) ExtractorFor(filename string) (Extractor, bool) {
	lang, ok := r.extToLang[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, false
	}
	e, ok := r.extractors[lang]
	return e, ok
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.ExtractorFor(filename)
	return ok
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractFile reads path and returns its includes. Unsupported files yield
// (nil, nil).
func (r *Registry) ExtractFile(path string) (*FileIncludes, error) {
	e, ok := r.ExtractorFor(path)
	if !ok {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	includes, err := e.Extract(path, content)
	if err != nil {
		return nil, err
	}

	return &FileIncludes{
		Path:     path,
		Language: e.Language(),
		Includes: normalizeIncludes(includes),
	}, nil
}

// ExtractProject extracts includes from files (relative to projectDir).
// Files that cannot be read or parsed are reported as issues and skipped.
func (r *Registry) ExtractProject(projectDir string, files []string) ([]FileIncludes, []Issue) {
	out := make([]FileIncludes, 0, len(files))
	var issues []Issue

	for _, rel := range files {
		extracted, err := r.ExtractFile(filepath.Join(projectDir, rel))
		if err != nil {
			lang := ""
			if e, ok := r.ExtractorFor(rel); ok {
				lang = e.Language()
			}
			issues = append(issues, Issue{
				File:     filepath.ToSlash(rel),
				Language: lang,
				Severity: SeverityError,
				Message:  err.Error(),
			})
			continue
		}
		if extracted == nil {
			continue
		}
		extracted.Path = filepath.ToSlash(rel)
		out = append(out, *extracted)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	SortIssues(issues)
	return out, issues
}

// SortIssues orders issues by file, then message.
func SortIssues(issues []Issue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File == issues[j].File {
			return issues[i].Message < issues[j].Message
		}
		return issues[i].File < issues[j].File
	})
}

// normalizeIncludes trims paths and drops repeated directives, keeping the
// first occurrence of each path.
func normalizeIncludes(values []Include) []Include {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(values))
	out := make([]Include, 0, len(values))
	for _, value := range values {
		value.Path = strings.TrimSpace(value.Path)
		if value.Path == "" || seen[value.Path] {
			continue
		}
		seen[value.Path] = true
		out = append(out, value)
	}
	return out
}

func issueFor(root, path string, err error) Issue {
	rel := path
	if r, relErr := filepath.Rel(root, path); relErr == nil {
		rel = r
	}
	return Issue{
		File:     filepath.ToSlash(rel),
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("walk error: %v", err),
	}
}
