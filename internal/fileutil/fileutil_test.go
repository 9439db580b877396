package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIsOrderIndependentAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "Makefile"), "all:\n")
	mustWrite(t, filepath.Join(dir, "src", "main.c"), "int main(void) { return 0; }\n")

	first := Fingerprint(ScanFileHashes(dir, []string{"Makefile", "src/main.c", "missing.c"}))
	second := Fingerprint(ScanFileHashes(dir, []string{"src/main.c", "Makefile"}))
	assert.Equal(t, first, second)

	mustWrite(t, filepath.Join(dir, "src", "main.c"), "int main(void) { return 1; }\n")
	third := Fingerprint(ScanFileHashes(dir, []string{"Makefile", "src/main.c"}))
	assert.NotEqual(t, first, third, "an edit changes the fingerprint")

	hash, err := HashFile(filepath.Join(dir, "Makefile"))
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("all:\n")), hash)
}

func TestWriteIfChangedTracked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "graph.json")

	wrote, err := WriteIfChangedTracked(path, []byte("a"))
	require.NoError(t, err)
	assert.True(t, wrote, "first write")

	wrote, err = WriteIfChangedTracked(path, []byte("a"))
	require.NoError(t, err)
	assert.False(t, wrote, "unchanged content is skipped")

	wrote, err = WriteIfChangedTracked(path, []byte("b"))
	require.NoError(t, err)
	assert.True(t, wrote, "changed content is written")
}

func TestWriteIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "makegraph.toml")

	wrote, err := WriteIfMissing(path, []byte("one"), 0644)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteIfMissing(path, []byte("two"), 0644)
	require.NoError(t, err)
	assert.False(t, wrote, "existing file is kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"n": 1}))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", buf.String())
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, DedupeStrings([]string{"b", "a", "b"}))
	assert.Equal(t, []string{"a", "b"}, MapKeysSorted(map[string]int{"b": 1, "a": 2}))

	set := ToSet([]string{"x"})
	assert.True(t, set["x"])
	assert.False(t, set["y"])
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
