package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDependencyOutputJoinsContinuations(t *testing.T) {
	out := []byte("hello.o: hello.c hello.h \\\n ../math-lib/math_ops.h \\\n  dir\\ with\\ space/x.h\n")

	assert.Equal(t, []string{"hello.c", "hello.h", "../math-lib/math_ops.h", "dir with space/x.h"}, ParseDependencyOutput(out))
}

func TestParseDependencyOutputSkipsDriveLetters(t *testing.T) {
	out := []byte(`C:\work\a.o: C:\work\a.c`)
	assert.Equal(t, []string{`C:\work\a.c`}, ParseDependencyOutput(out))
}

func TestNormalizeHeaderPath(t *testing.T) {
	projectDir := filepath.Join(string(filepath.Separator), "ws", "A")

	assert.Equal(t, "../B/include/foo.h", NormalizeHeaderPath(projectDir, filepath.Join(string(filepath.Separator), "ws", "B", "include", "foo.h")))
	assert.Equal(t, "x.h", NormalizeHeaderPath(projectDir, "./x.h"))
	assert.Equal(t, "", NormalizeHeaderPath(projectDir, "  "))
}

func TestDependencyListUsesIncludeFlagsAndDropsTheSource(t *testing.T) {
	var gotDir, gotName string
	var gotArgs []string
	run := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		gotDir, gotName, gotArgs = dir, name, args
		return []byte("main.o: src/main.c ../B/include/foo.h\n"), nil
	}

	headers, err := DependencyList(context.Background(), run, "gcc", "/ws/A", "src/main.c", []string{"../B/include"})
	require.NoError(t, err)

	assert.Equal(t, "/ws/A", gotDir)
	assert.Equal(t, "gcc", gotName)
	assert.Equal(t, []string{"-MM", "-I../B/include", "src/main.c"}, gotArgs)
	assert.Equal(t, []string{"../B/include/foo.h"}, headers)
}

func TestDependencyListMissingExecutableIsConfigError(t *testing.T) {
	run := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
	}

	_, err := DependencyList(context.Background(), run, "clang", "/ws/A", "a.c", nil)
	assert.ErrorIs(t, err, ErrToolchainMissing)
}

func TestDependencyListCompileFailureIsPlainError(t *testing.T) {
	run := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	headers, err := DependencyList(context.Background(), run, "gcc", "/ws/A", "a.c", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrToolchainMissing)
	assert.Empty(t, headers)
}
