package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameRules(t *testing.T) {
	cases := []struct {
		root string
		want string
	}{
		{root: ".", want: "root"},
		{root: "", want: "root"},
		{root: "./", want: "root"},
		{root: "math-lib", want: "math-lib"},
		{root: "deps/hiredis", want: "deps-hiredis"},
		{root: "examples/hello-world", want: "hello-world"},
		{root: "examples/hello-world/sub", want: "examples-hello-world-sub"},
		{root: "libs/core/net", want: "libs-core-net"},
		{root: "./deps/hiredis/", want: "deps-hiredis"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Name(tc.root), "root %q", tc.root)
	}
}

func TestNameIsDeterministic(t *testing.T) {
	n := NewNamer([]string{"apps"})
	for _, root := range []string{"apps/web", "deps/x/y", "."} {
		assert.Equal(t, n.Name(root), n.Name(root))
	}
	assert.Equal(t, "web", n.Name("apps/web"))
	assert.Equal(t, "examples-demo", n.Name("examples/demo"))
}

func TestCollisionsAreReported(t *testing.T) {
	collisions := NewNamer(DefaultGroupDirs).Collisions([]string{"a-b", "a/b", "c"})
	assert.Equal(t, map[string][]string{"a-b": {"a-b", "a/b"}}, collisions)
}
