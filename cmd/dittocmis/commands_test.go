package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns its output. Flag
// variables are package state, so they are reset first.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath = ""
	initForce = false
	clientUser, clientPassword = "", ""
	treeDepth, treeFolders = -1, false
	typesProperties = false
	gcDryRun = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err := run(t, "init", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "Configuration written to "+path)
	return path
}

func TestInitCmd_RefusesToOverwrite(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "init", "--config", path)
	assert.Error(t, err)

	_, err = run(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestTreeCmd_PrintsDemoTree(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "tree", "--config", path, "-u", "admin", "-p", "admin", "/Sites")
	require.NoError(t, err)

	assert.Contains(t, out, "/Sites\n")
	assert.Contains(t, out, "  marketing/\n")
	assert.Contains(t, out, "    launch-plan.md (")
	assert.Contains(t, out, "    empty.txt\n")
}

func TestTreeCmd_FoldersOnly(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "tree", "--config", path, "-u", "admin", "-p", "admin", "--folders")
	require.NoError(t, err)

	assert.Contains(t, out, "  Sites/\n")
	assert.Contains(t, out, "    engineering/\n")
	assert.NotContains(t, out, "readme.txt")
}

func TestTreeCmd_Errors(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "tree", "--config", path, "-u", "admin", "-p", "admin", "/Shared/readme.txt")
	assert.ErrorContains(t, err, "not a folder")

	_, err = run(t, "tree", "--config", path, "-u", "admin", "-p", "admin", "/missing")
	assert.Error(t, err)

	_, err = run(t, "tree", "--config", path, "-u", "admin", "-p", "wrong")
	assert.Error(t, err)
}

func TestTypesCmd_PrintsHierarchy(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "types", "--config", path, "-u", "admin", "-p", "admin", "--properties")
	require.NoError(t, err)

	assert.Contains(t, out, "cmis:folder (")
	assert.Contains(t, out, "cmis:document (")
	assert.Contains(t, out, "  - cmis:name string\n")
}

func TestGCCmd_ReportsSummary(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "gc", "--config", path, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "orphaned=0")
	assert.Contains(t, out, "deleted=0")
}
