package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/makegraph/internal/source"
)

const helloSource = `#include <stdio.h>
#include "hello.h"
#include "../math-lib/math_ops.h"

/* #include "../commented/block.h" */
// #include "../commented/line.h"

static const char *doc = "#include \"../in/string.h\"";

#if defined(FEATURE)
#  include "../feature/feature.h"
#endif
#include CONFIG_HEADER

void print_hello(void) {
    printf("Hello, World!\n");
}
`

func paths(includes []source.Include) []string {
	out := make([]string, 0, len(includes))
	for _, inc := range includes {
		out = append(out, inc.Path)
	}
	return out
}

func TestCExtractorIgnoresCommentsAndStrings(t *testing.T) {
	includes, err := NewCExtractor().Extract("hello.c", []byte(helloSource))
	require.NoError(t, err)

	assert.Equal(t, []string{"stdio.h", "hello.h", "../math-lib/math_ops.h", "../feature/feature.h"}, paths(includes))
	assert.True(t, includes[0].System)
	assert.False(t, includes[1].System)
	assert.Equal(t, 3, includes[2].Line)
}

func TestCPPExtractor(t *testing.T) {
	src := `#include <vector>
#include "../core/api.hpp"
auto raw = R"(
#include "../raw/string.h"
)";
`
	includes, err := NewCPPExtractor().Extract("main.cpp", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"vector", "../core/api.hpp"}, paths(includes))
}

func TestScanIncludesMatchesTreeSitterOnPlainC(t *testing.T) {
	includes := ScanIncludes([]byte(helloSource))
	assert.Equal(t, []string{"stdio.h", "hello.h", "../math-lib/math_ops.h", "../feature/feature.h"}, paths(includes))
	assert.Equal(t, 11, includes[3].Line)
}

func TestScanIncludesHandlesObjectiveCAndRawStrings(t *testing.T) {
	src := `#import <Foundation/Foundation.h>
#import "../shared/Model.h"
NSString *s = @"#include \"../fake.h\"";
const char *r = R"x(
#include "../raw.h"
)x";
char q = '"';
#include "after.h"
`
	includes := ScanIncludes([]byte(src))
	assert.Equal(t, []string{"Foundation/Foundation.h", "../shared/Model.h", "after.h"}, paths(includes))
	assert.Equal(t, 8, includes[2].Line)
}

func TestStripCommentsKeepsLineCount(t *testing.T) {
	src := "a /* one\ntwo */ b // three\nc \"x // y\"\n"
	stripped := string(StripCommentsAndLiterals([]byte(src)))
	assert.Equal(t, "a  \n  b  \nc \"\"\n", stripped)
}

func TestIsCompilable(t *testing.T) {
	for name, want := range map[string]bool{
		"main.c":    true,
		"main.CPP":  true,
		"start.S":   true,
		"start.s":   false,
		"api.h":     false,
		"api.hpp":   false,
		"table.inc": false,
	} {
		assert.Equal(t, want, IsCompilable(name), name)
	}
}

func TestDefaultRegistryCoversHeadersAndSources(t *testing.T) {
	r := NewDefaultRegistry()
	for _, name := range []string{"a.c", "a.h", "a.cpp", "a.hpp", "a.m", "a.S", "a.inc"} {
		assert.True(t, r.Supports(name), name)
	}
	assert.False(t, r.Supports("Makefile"))
}
