package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	versionCmd.SetOut(buf)
	versionCmd.SetErr(buf)

	require.NoError(t, versionCmd.RunE(versionCmd, nil))

	output := buf.String()
	assert.Contains(t, output, "drawcheck version")
	assert.Contains(t, output, "Commit:")
	assert.Contains(t, output, "Built:")
}
