package makefile

import (
	"os"
	"path/filepath"
)

// Names lists the file names GNU Make looks for, in its lookup order.
var Names = []string{"GNUmakefile", "makefile", "Makefile"}

// IsName reports whether base is one of Names.
func IsName(base string) bool {
	for _, name := range Names {
		if base == name {
			return true
		}
	}
	return false
}

// Find returns the Makefile make would pick up in dir.
func Find(dir string) (string, bool) {
	for _, name := range Names {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
