package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/makegraph/internal/cli"
)

func TestRootCommandUsesBuildVersion(t *testing.T) {
	root := cli.NewRootCommand(version)
	assert.Equal(t, "makegraph", root.Use)

	cmd, _, err := root.Find([]string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version", cmd.Name())
}
