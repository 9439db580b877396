package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/makegraph/internal/depmap"
)

func TestChangedAndRemovedProjects(t *testing.T) {
	s := NewState()
	s.SetProject("a", "a", "a1", nil)
	s.SetProject("b", "b", "b1", nil)
	s.SetProject("c", "c", "c1", nil)

	changed := s.ChangedProjects(map[string]string{
		"a": "a1",
		"b": "b2",
		"d": "d1",
	})
	assert.Equal(t, []string{"b", "d"}, changed)

	removed := s.RemovedProjects(map[string]bool{
		"a": true,
		"b": true,
		"d": true,
	})
	assert.Equal(t, []string{"c"}, removed)
}

func TestImpactedProjectsClosure(t *testing.T) {
	s := NewState()
	s.SetProject("app", "app", "x", []depmap.Dependency{{Source: "app", Target: "lib"}})
	s.SetProject("tool", "tool", "x", []depmap.Dependency{{Source: "tool", Target: "app"}})
	s.SetProject("other", "other", "x", []depmap.Dependency{{Source: "other", Target: "misc"}})
	s.SetProject("lib", "lib", "x", nil)

	impacted, reasons := s.ImpactedProjects([]string{"lib"}, nil)
	assert.Equal(t, []string{"app", "lib", "tool"}, impacted)
	assert.Equal(t, []string{"depends on app"}, reasons["tool"])
	assert.Equal(t, []string{"changed"}, reasons["lib"])

	impacted, reasons = s.ImpactedProjects(nil, []string{"misc"})
	assert.Equal(t, []string{"misc", "other"}, impacted)
	assert.Equal(t, []string{"removed"}, reasons["misc"])
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()

	loaded, err := Load(root)
	require.NoError(t, err, "a workspace without state loads empty")
	assert.Empty(t, loaded.Projects)

	s := NewState()
	s.Strategy = "manual"
	s.SetProject("app", "app", "f1", []depmap.Dependency{
		{Source: "app", Target: "lib", Type: depmap.TypeStatic, Evidence: "main.c:3"},
	})
	s.SetProject("lib", "lib", "f2", nil)
	require.NoError(t, s.Save(root))
	_, err = os.Stat(Path(root))
	require.NoError(t, err)

	loaded, err = Load(root)
	require.NoError(t, err)
	assert.Equal(t, "manual", loaded.Strategy)
	assert.Equal(t, CurrentStateVersion, loaded.Version)

	deps := loaded.Dependencies()
	require.Len(t, deps, 1)
	assert.Equal(t, "main.c:3", deps[0].Evidence)

	assert.False(t, loaded.HasChanged("lib", "f2"))
	assert.True(t, loaded.HasChanged("lib", "f3"))
	assert.True(t, loaded.HasChanged("new", "f"))
}

func TestLoadCorruptState(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, Dir), 0755))
	require.NoError(t, os.WriteFile(Path(root), []byte("{not json"), 0644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestMigrateStateInitializesMaps(t *testing.T) {
	s := &State{}

	migrateState(s)

	assert.Equal(t, CurrentStateVersion, s.Version)
	assert.NotNil(t, s.Projects)
	assert.NotNil(t, s.OutputHashes)
}
