package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/workflow"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()

	want := []string{
		"new", "ci", "check", "fmt", "build", "package", "upload",
		"docs", "release", "verify", "clean", "version",
	}

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, names[name], "missing subcommand %q", name)
	}
}

func TestReleaseSubcommands(t *testing.T) {
	root := NewRootCommand()

	release, _, err := root.Find([]string{"release"})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, cmd := range release.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range []string{"plan", "notes", "tag", "publish", "register"} {
		assert.True(t, names[name], "missing release subcommand %q", name)
	}
}

func TestDocsSubcommands(t *testing.T) {
	root := NewRootCommand()

	docs, _, err := root.Find([]string{"docs"})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, cmd := range docs.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range []string{"build", "preview", "serve"} {
		assert.True(t, names[name], "missing docs subcommand %q", name)
	}
}

func TestCheckParallelFlag(t *testing.T) {
	root := NewRootCommand()

	cmd, _, err := root.Find([]string{"check"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--parallel", "4"}))

	parallel, err := cmd.Flags().GetInt("parallel")
	require.NoError(t, err)
	assert.Equal(t, 4, parallel)
}

// TestWorkflowInvocations parses every pkgship call from the generated
// workflows against the real command tree, so a renamed flag or subcommand
// cannot ship inside a preset.
func TestWorkflowInvocations(t *testing.T) {
	files, err := workflow.Files(workflow.Params{})
	require.NoError(t, err)

	invocations := []string{}
	for _, file := range files {
		for _, line := range strings.Split(string(file.Content), "\n") {
			idx := strings.Index(line, "cmd/pkgship")
			if idx < 0 {
				continue
			}
			invocations = append(invocations, strings.TrimSpace(line[idx+len("cmd/pkgship"):]))
		}
	}
	require.NotEmpty(t, invocations)

	for _, invocation := range invocations {
		t.Run("pkgship "+invocation, func(t *testing.T) {
			root := NewRootCommand()

			cmd, remaining, err := root.Traverse(strings.Fields(invocation))
			require.NoError(t, err)
			require.NoError(t, cmd.ParseFlags(remaining))
		})
	}
}
