package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCommand(t *testing.T) {
	assert.NotNil(t, batchCmd)
	assert.True(t, strings.HasPrefix(batchCmd.Use, "batch"))
	assert.NotEmpty(t, batchCmd.Short)
	assert.NotEmpty(t, batchCmd.Long)
}

func TestBatchCommandHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	batchCmd.SetOut(buf)
	batchCmd.SetErr(buf)
	require.NoError(t, batchCmd.Help())

	output := buf.String()
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "Flags:")
}

func TestBatchCommandRequiresTwoArgs(t *testing.T) {
	err := batchCmd.Args(batchCmd, []string{"only-masters"})
	assert.Error(t, err)
}

func TestBatchCommandAcceptsTwoArgs(t *testing.T) {
	err := batchCmd.Args(batchCmd, []string{"masters", "checks"})
	assert.NoError(t, err)
}

func TestBatchCommandRejectsInvalidFormat(t *testing.T) {
	globalConfig = nil
	viper.Set("output.format", "yaml")
	defer viper.Set("output.format", "")

	err := batchCmd.RunE(batchCmd, []string{"masters", "checks"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")

	globalConfig = nil
}
