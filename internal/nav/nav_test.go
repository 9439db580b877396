package nav

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/makegraph/internal/depmap"
	"github.com/skelly-dev/makegraph/internal/state"
)

// app -> net -> core, tool -> core, core has no dependencies.
func newTestState() *state.State {
	st := state.NewState()
	st.SetProject("app", "apps/app", "f1", []depmap.Dependency{
		{Source: "app", Target: "net", Type: depmap.TypeStatic, Evidence: "Makefile:1"},
	})
	st.SetProject("net", "libs/net", "f2", []depmap.Dependency{
		{Source: "net", Target: "core", Type: depmap.TypeStatic, Evidence: "net.c:3"},
	})
	st.SetProject("tool", "tool", "f3", []depmap.Dependency{
		{Source: "tool", Target: "core", Type: depmap.TypeStatic, Evidence: "main.c"},
	})
	st.SetProject("core", "libs/core", "f4", nil)
	return st
}

func TestResolveByNameOrRoot(t *testing.T) {
	lookup := NewLookup(newTestState())

	node := Resolve(lookup, "net")
	require.NotNil(t, node)
	assert.Equal(t, "libs/net", node.Root)

	node = Resolve(lookup, "./libs/core/")
	require.NotNil(t, node)
	assert.Equal(t, "core", node.Name)

	_, err := ResolveProject(lookup, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known: app, core, net, tool")
}

func TestCollectEdgesCarryEvidence(t *testing.T) {
	lookup := NewLookup(newTestState())
	core := lookup.ByName["core"]

	assert.Equal(t, []EdgeRecord{
		{Project: ProjectRecord{Name: "net", Root: "libs/net"}, Evidence: "net.c:3"},
		{Project: ProjectRecord{Name: "tool", Root: "tool"}, Evidence: "main.c"},
	}, CollectDependents(lookup, core))

	deps := CollectDependencies(lookup, lookup.ByName["app"])
	require.Len(t, deps, 1)
	assert.Equal(t, "net", deps[0].Project.Name)
	assert.Equal(t, "Makefile:1", deps[0].Evidence)

	all := TransitiveDependents(lookup, core)
	names := make([]string, 0, len(all))
	for _, record := range all {
		names = append(names, record.Name)
	}
	assert.Equal(t, []string{"app", "net", "tool"}, names)
}

func TestTraceAndShortestPath(t *testing.T) {
	lookup := NewLookup(newTestState())

	hops := Trace(lookup, lookup.ByName["app"], 1)
	require.Len(t, hops, 1)
	assert.Equal(t, "net", hops[0].To.Name)

	hops = Trace(lookup, lookup.ByName["app"], 3)
	require.Len(t, hops, 2)
	assert.Equal(t, 2, hops[1].Depth)
	assert.Equal(t, "core", hops[1].To.Name)

	assert.Equal(t, []string{"app", "net", "core"}, ShortestPath(lookup, "app", "core"))
	assert.Nil(t, ShortestPath(lookup, "core", "app"), "edges are directed")
}

func TestRunPathJSON(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, newTestState().Save(root))

	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", false, "")
	require.NoError(t, cmd.Flags().Set("json", "true"))

	var out string
	withWorkingDir(t, root, func() {
		out = captureStdout(t, func() {
			require.NoError(t, RunPath(cmd, []string{"app", "libs/core"}))
		})
	})

	var payload struct {
		Length int                 `json:"length"`
		Edges  []map[string]string `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	assert.Equal(t, 2, payload.Length)
	require.Len(t, payload.Edges, 2)
	assert.Equal(t, "net.c:3", payload.Edges[1]["evidence"])
}

func TestLoadLookupWithoutStateFails(t *testing.T) {
	_, err := LoadLookup(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run makegraph deps")
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() {
		_ = os.Chdir(originalWD)
	}()
	fn()
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = writer
	defer func() {
		os.Stdout = original
		_ = reader.Close()
	}()

	fn()

	require.NoError(t, writer.Close())
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(data)
}
