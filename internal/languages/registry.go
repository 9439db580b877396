package languages

import (
	"path/filepath"
	"strings"

	"github.com/skelly-dev/makegraph/internal/source"
)

// NewDefaultRegistry creates a registry with every include extractor.
func NewDefaultRegistry() *source.Registry {
	r := source.NewRegistry()

	r.Register(NewCExtractor())
	r.Register(NewCPPExtractor())
	r.Register(NewTextExtractor())

	return r
}

var compilableExtensions = map[string]bool{
	".c":   true,
	".cc":  true,
	".cpp": true,
	".cxx": true,
	".c++": true,
	".m":   true,
	".mm":  true,
	".s":   true,
}

// IsCompilable reports whether name is a translation unit a C compiler
// accepts directly. Headers and fragments are not.
func IsCompilable(name string) bool {
	ext := filepath.Ext(name)
	// ".S" is preprocessed assembly, ".s" is not.
	if ext == ".s" {
		return false
	}
	return compilableExtensions[strings.ToLower(ext)]
}
