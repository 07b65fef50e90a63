package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

// useWorkspace points the global flags at a fresh temp workspace and keeps
// user-level config out of the way.
func useWorkspace(t *testing.T) string {
	t.Helper()
	prevProject, prevJSON, prevVerbose := projectDir, outputJSON, verbose
	t.Cleanup(func() {
		projectDir, outputJSON, verbose = prevProject, prevJSON, prevVerbose
	})

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CACHE_HOME", home)
	t.Setenv("GEM_HOME", "")

	projectDir = t.TempDir()
	outputJSON = false
	verbose = false
	return projectDir
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
