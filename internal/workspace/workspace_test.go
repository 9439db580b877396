package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/naming"
)

func TestDiscoverFindsMakefileProjects(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "Makefile"), "all:\n")
	mustWriteFile(t, filepath.Join(root, "examples", "hello-world", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(root, "deps", "hiredis", "makefile"), "all:\n")
	mustWriteFile(t, filepath.Join(root, "deps", "hiredis", "GNUmakefile"), "all:\n")
	mustWriteFile(t, filepath.Join(root, ".git", "Makefile"), "all:\n")
	mustWriteFile(t, filepath.Join(root, "docs", "README.md"), "")

	set, issues, err := Discover(context.Background(), root, naming.NewNamer(naming.DefaultGroupDirs), ignore.NewDiscoveryMatcher(nil))
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, []string{".", "deps/hiredis", "examples/hello-world"}, set.Roots())
	assert.Equal(t, []string{"deps-hiredis", "hello-world", "root"}, set.Names())

	hiredis, ok := set.Lookup("deps-hiredis")
	require.True(t, ok)
	assert.Equal(t, "GNUmakefile", filepath.Base(hiredis.Makefile))
}

func TestDiscoverKeepsVendoredAndBuildTreeProjects(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "app", "Makefile"), "foo.o: ../vendor/hiredis/hiredis.h\n")
	mustWriteFile(t, filepath.Join(root, "vendor", "hiredis", "Makefile"), "all:\n")
	mustWriteFile(t, filepath.Join(root, "vendor", "hiredis", "hiredis.h"), "")
	mustWriteFile(t, filepath.Join(root, "out", "Makefile"), "all:\n")
	mustWriteFile(t, filepath.Join(root, "scratch", "Makefile"), "all:\n")

	set, _, err := Discover(context.Background(), root, naming.NewNamer(nil), ignore.NewDiscoveryMatcher([]string{"scratch/"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "out", "vendor/hiredis"}, set.Roots())
	owner, ok := set.Owner(filepath.Join(root, "vendor", "hiredis", "hiredis.h"))
	require.True(t, ok)
	assert.Equal(t, "vendor-hiredis", owner.Name)
}

func TestOwnerPrefersLongestPrefix(t *testing.T) {
	ws := filepath.Join(string(filepath.Separator), "ws")
	set := NewSet(ws, []Project{
		{Root: ".", Name: "root", Dir: ws},
		{Root: "libs", Name: "libs", Dir: filepath.Join(ws, "libs")},
		{Root: "libs/net", Name: "libs-net", Dir: filepath.Join(ws, "libs", "net")},
	})

	owner, ok := set.Owner(filepath.Join(ws, "libs", "net", "include", "net.h"))
	require.True(t, ok)
	assert.Equal(t, "libs-net", owner.Name)

	owner, ok = set.Owner(filepath.Join(ws, "libs", "network", "x.h"))
	require.True(t, ok)
	assert.Equal(t, "libs", owner.Name, "prefix matching respects path segments")

	owner, ok = set.Owner(filepath.Join(ws, "tools", "x.h"))
	require.True(t, ok)
	assert.Equal(t, "root", owner.Name)

	_, ok = set.Owner(filepath.Join(string(filepath.Separator), "elsewhere", "x.h"))
	assert.False(t, ok)
}

func TestAmbiguousNames(t *testing.T) {
	set := NewSet("/ws", []Project{
		{Root: "a/b", Name: "a-b", Dir: "/ws/a/b"},
		{Root: "a-b", Name: "a-b", Dir: "/ws/a-b"},
		{Root: "c", Name: "c", Dir: "/ws/c"},
	})

	assert.True(t, set.Ambiguous("a-b"))
	assert.False(t, set.Ambiguous("c"))
	assert.False(t, set.Ambiguous("missing"))

	p, ok := set.Lookup("a-b")
	require.True(t, ok)
	assert.Equal(t, "a-b", p.Root, "the lexically smaller root keeps the name")
}

func TestSelect(t *testing.T) {
	set := NewSet("/ws", []Project{
		{Root: "b", Name: "b", Dir: "/ws/b"},
		{Root: "a", Name: "a", Dir: "/ws/a"},
	})

	assert.Len(t, set.Select(nil), 2)
	selected := set.Select([]string{"b", "missing"})
	require.Len(t, selected, 1)
	assert.Equal(t, "b", selected[0].Name)
	assert.Empty(t, set.Select([]string{}))
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
