package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"third_party/**",
		"!third_party/keep/api.h",
		"*.tmp",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: ".makegraph/state.json", isDir: false, ignored: true},
		{path: "node_modules/pkg/index.h", isDir: false, ignored: true},
		{path: "libs/core/build", isDir: true, ignored: true},
		{path: "libs/core/build/gen.h", isDir: false, ignored: true},
		{path: "libs/core/CMakeFiles", isDir: true, ignored: true},
		{path: "third_party/zlib/zlib.h", isDir: false, ignored: true},
		{path: "third_party/keep/api.h", isDir: false, ignored: false},
		{path: "nested/cache.tmp", isDir: false, ignored: true},
		{path: "src/main.c", isDir: false, ignored: false},
		{path: "builder/main.c", isDir: false, ignored: false},
		{path: ".", isDir: true, ignored: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ignored, m.ShouldIgnore(tc.path, tc.isDir), tc.path)
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"!build/",
		"generated/",
	})

	assert.False(t, m.ShouldIgnore("build/include/file.h", false), "negation re-enables build/")
	assert.True(t, m.ShouldIgnore("src/generated/parser.c", false))
	assert.False(t, m.ShouldIgnore("generated", false), "a file named like a directory rule is kept")
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/legacy"})

	assert.True(t, m.ShouldIgnore("legacy", true))
	assert.False(t, m.ShouldIgnore("apps/legacy", true), "anchored rules only match at the top")
}

func TestNilMatcherIgnoresNothing(t *testing.T) {
	var m *Matcher
	assert.False(t, m.ShouldIgnore("build", true))
}

func TestDiscoveryMatcher_KeepsBuildTrees(t *testing.T) {
	m := NewDiscoveryMatcher([]string{"scratch/"})

	cases := []struct {
		path    string
		ignored bool
	}{
		{path: ".git", ignored: true},
		{path: ".makegraph", ignored: true},
		{path: "vendor/hiredis", ignored: false},
		{path: "out", ignored: false},
		{path: "build", ignored: false},
		{path: "third_party/target", ignored: false},
		{path: "scratch", ignored: true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ignored, m.ShouldIgnore(tc.path, true), tc.path)
	}
}
