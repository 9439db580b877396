package graph

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/makegraph/internal/depmap"
	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/include"
	"github.com/skelly-dev/makegraph/internal/naming"
	"github.com/skelly-dev/makegraph/internal/targets"
	"github.com/skelly-dev/makegraph/internal/toolchain"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

func TestLexicalModeFindsMakefilePrerequisitePath(t *testing.T) {
	ws := t.TempDir()
	mustWriteFile(t, filepath.Join(ws, "A", "Makefile"), "build: foo.o\nfoo.o: ../B/include/foo.h\n")
	mustWriteFile(t, filepath.Join(ws, "B", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(ws, "B", "include", "foo.h"), "")

	set := discover(t, ws)
	strategies := mustStrategies(t, include.Options{Mode: toolchain.ModeManual, LookPath: noCompilers})

	result, err := BuildDependencies(context.Background(), set, strategies, nil)
	require.NoError(t, err)
	assert.Equal(t, []depmap.Dependency{
		{Source: "A", Target: "B", Type: depmap.TypeStatic, Evidence: "Makefile:2"},
	}, result.Dependencies)
}

func TestPreprocessorModeResolvesThroughIncludeFlags(t *testing.T) {
	ws := t.TempDir()
	mustWriteFile(t, filepath.Join(ws, "A", "Makefile"), "CFLAGS=-I../B/include\nbuild:\n\t$(CC) $(CFLAGS) main.c\n")
	mustWriteFile(t, filepath.Join(ws, "A", "main.c"), "#include \"foo.h\"\n")
	mustWriteFile(t, filepath.Join(ws, "B", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(ws, "B", "include", "foo.h"), "")

	runner := func(_ context.Context, _, _ string, args ...string) ([]byte, error) {
		if len(args) != 3 || args[1] != "-I../B/include" {
			t.Errorf("unexpected compiler args: %v", args)
		}
		return []byte("main.o: main.c ../B/include/foo.h\n"), nil
	}
	set := discover(t, ws)

	// Only the compiler may produce the edge here.
	strategies := []include.Strategy{&include.PreprocessorStrategy{Compiler: "gcc", Runner: runner, Jobs: 1}}
	result, err := BuildDependencies(context.Background(), set, strategies, nil)
	require.NoError(t, err)
	assert.Equal(t, []depmap.Dependency{
		{Source: "A", Target: "B", Type: depmap.TypeStatic, Evidence: "main.c"},
	}, result.Dependencies)
}

func TestExplicitMissingCompilerAbortsButManualSucceeds(t *testing.T) {
	ws := t.TempDir()
	mustWriteFile(t, filepath.Join(ws, "A", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(ws, "A", "main.c"), "#include \"../B/b.h\"\n")
	mustWriteFile(t, filepath.Join(ws, "B", "Makefile"), "build:\n")

	_, _, err := include.StrategiesFor(include.Options{Mode: toolchain.ModeClang, LookPath: noCompilers})
	require.Error(t, err, "missing clang is a configuration error")

	strategies := mustStrategies(t, include.Options{Mode: toolchain.ModeManual, LookPath: noCompilers})
	result, err := BuildDependencies(context.Background(), discover(t, ws), strategies, nil)
	require.NoError(t, err, "manual mode never needs a compiler")
	assert.Equal(t, []depmap.Dependency{
		{Source: "A", Target: "B", Type: depmap.TypeStatic, Evidence: "main.c:1"},
	}, result.Dependencies)
}

func TestDependencyPassIsIdempotentAndSelective(t *testing.T) {
	ws := t.TempDir()
	mustWriteFile(t, filepath.Join(ws, "app", "Makefile"), "CFLAGS=-I../lib/include -I../app/include\nall:\n")
	mustWriteFile(t, filepath.Join(ws, "app", "main.c"), "#include \"../lib/include/lib.h\"\n#include \"../tools/t.h\"\n")
	mustWriteFile(t, filepath.Join(ws, "lib", "Makefile"), "all:\n")
	mustWriteFile(t, filepath.Join(ws, "lib", "lib.c"), "#include \"../app/app.h\"\n")
	mustWriteFile(t, filepath.Join(ws, "Makefile"), "all:\n")

	set := discover(t, ws)
	strategies := mustStrategies(t, include.Options{Mode: toolchain.ModeManual, LookPath: noCompilers})

	first, err := BuildDependencies(context.Background(), set, strategies, nil)
	require.NoError(t, err)
	second, err := BuildDependencies(context.Background(), set, strategies, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Dependencies, second.Dependencies)

	for _, dep := range first.Dependencies {
		assert.NotEqual(t, dep.Source, dep.Target, "self-loop in %v", first.Dependencies)
	}
	assert.Equal(t, []depmap.Dependency{
		{Source: "app", Target: "lib", Type: depmap.TypeStatic, Evidence: "Makefile:1"},
		{Source: "app", Target: "root", Type: depmap.TypeStatic, Evidence: "main.c:2"},
		{Source: "lib", Target: "app", Type: depmap.TypeStatic, Evidence: "lib.c:1"},
	}, first.Dependencies)

	selective, err := BuildDependencies(context.Background(), set, strategies, []string{"lib"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib"}, selective.Visited)
	assert.Equal(t, []depmap.Dependency{
		{Source: "lib", Target: "app", Type: depmap.TypeStatic, Evidence: "lib.c:1"},
	}, selective.Dependencies)

	cycles, err := Cycles(first.Dependencies)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"app", "lib"}}, cycles)
}

func TestBuildNodesAndLinking(t *testing.T) {
	ws := t.TempDir()
	mustWriteFile(t, filepath.Join(ws, "examples", "hello-world", "Makefile"), "build: hello\nhello:\nrun: build\n")
	mustWriteFile(t, filepath.Join(ws, "examples", "math-lib", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(ws, "deps", "hiredis", "Makefile"), ".PHONY: all\nall:\n_hidden:\n")

	set := discover(t, ws)
	nodes, err := BuildNodes(context.Background(), set, 2)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "deps-hiredis", nodes[0].Name)
	assert.Equal(t, "hello-world", nodes[1].Name)
	assert.Equal(t, "math-lib", nodes[2].Name)
	assert.Equal(t, []string{"all"}, targets.Names(nodes[0].Targets))
	helloTargets := targets.Names(nodes[1].Targets)
	require.Len(t, helloTargets, 4)
	assert.Equal(t, targets.ServeTarget, helloTargets[3])
	assert.Equal(t, "examples/hello-world/Makefile", nodes[1].Makefile)

	single, err := BuildNode(ws, filepath.Join(ws, "examples", "math-lib", "Makefile"), naming.NewNamer(naming.DefaultGroupDirs))
	require.NoError(t, err)
	assert.Equal(t, "math-lib", single.Name)
	assert.Equal(t, "examples/math-lib", single.Root)

	g := New(nodes, []depmap.Dependency{
		{Source: "hello-world", Target: "math-lib", Type: depmap.TypeStatic, Evidence: "hello.c:1"},
		{Source: "deps-hiredis", Target: "math-lib", Type: depmap.TypeStatic, Evidence: "net.c:3"},
		{Source: "hello-world", Target: "ghost", Type: depmap.TypeStatic, Evidence: "x.c:1"},
	})
	assert.Len(t, g.Edges, 2, "edges to unknown projects are skipped")

	mathLib, ok := g.Node("math-lib")
	require.True(t, ok)
	assert.Equal(t, []string{"deps-hiredis", "hello-world"}, mathLib.InEdges)
	assert.Equal(t, "math-lib", g.TopNodes(1)[0].Name)

	hello, ok := g.Node("hello-world")
	require.True(t, ok)
	build, _ := targets.Find(hello.Targets, "build")
	assert.Equal(t, []string{targets.DependencyBuild, "hello"}, build.DependsOn)
}

func TestNewKeepsNodesWithCollidingNames(t *testing.T) {
	ws := t.TempDir()
	mustWriteFile(t, filepath.Join(ws, "a-b", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(ws, "a", "b", "Makefile"), "build:\n")
	mustWriteFile(t, filepath.Join(ws, "c", "Makefile"), "build:\n")

	set := discover(t, ws)
	nodes, err := BuildNodes(context.Background(), set, 0)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	g := New(nodes, []depmap.Dependency{
		{Source: "a-b", Target: "c", Type: depmap.TypeStatic, Evidence: "Makefile:1"},
	})

	sorted := g.SortedNodes()
	require.Len(t, sorted, 3, "one node per Makefile")
	assert.Equal(t, "a-b", sorted[0].Root)
	assert.Equal(t, "a/b", sorted[1].Root)
	assert.Equal(t, "a-b", sorted[0].Name)
	assert.Equal(t, "a-b", sorted[1].Name)

	owner, ok := g.Node("a-b")
	require.True(t, ok)
	assert.Equal(t, "a-b", owner.Root, "the smallest root owns a shared name")
	assert.Equal(t, []string{"c"}, owner.OutEdges)
	assert.Empty(t, sorted[1].OutEdges)
}

func TestDependents(t *testing.T) {
	deps := []depmap.Dependency{
		{Source: "app", Target: "lib"},
		{Source: "lib", Target: "core"},
		{Source: "tool", Target: "core"},
		{Source: "other", Target: "misc"},
	}
	assert.Equal(t, []string{"app", "core", "lib", "tool"}, Dependents(deps, []string{"core"}))
}

func noCompilers(file string) (string, error) {
	return "", exec.ErrNotFound
}

func mustStrategies(t *testing.T, opts include.Options) []include.Strategy {
	t.Helper()
	strategies, _, err := include.StrategiesFor(opts)
	require.NoError(t, err)
	return strategies
}

func discover(t *testing.T, root string) *workspace.Set {
	t.Helper()
	set, _, err := workspace.Discover(context.Background(), root, naming.NewNamer(naming.DefaultGroupDirs), ignore.NewDiscoveryMatcher(nil))
	require.NoError(t, err)
	return set
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
