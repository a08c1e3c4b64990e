package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pkgship/pkgship/pkg/testutil"
	"github.com/pkgship/pkgship/pkg/workflow"
)

func TestPresetGolden(t *testing.T) {
	for _, name := range workflow.Presets {
		t.Run(name, func(t *testing.T) {
			wf, err := workflow.Preset(name, workflow.Params{})
			require.NoError(t, err)

			content, err := wf.Render()
			require.NoError(t, err)

			// Every preset must stay parseable YAML with the mandatory keys.
			parsed := map[string]any{}
			require.NoError(t, yaml.Unmarshal(content, &parsed))
			assert.Contains(t, parsed, "on")
			assert.Contains(t, parsed, "jobs")

			testutil.AssertGolden(t, filepath.Join("test-fixtures", name+"-golden.yml"), content)
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := workflow.Preset("deploy-to-mars", workflow.Params{})
	assert.Error(t, err)
}

func TestDependabotGolden(t *testing.T) {
	content, err := workflow.Dependabot()
	require.NoError(t, err)

	testutil.AssertGolden(t, filepath.Join("test-fixtures", "dependabot-golden.yml"), content)
}

func TestFiles(t *testing.T) {
	files, err := workflow.Files(workflow.Params{})
	require.NoError(t, err)

	paths := []string{}
	for _, file := range files {
		paths = append(paths, file.Path)
	}

	assert.Equal(t, []string{
		".github/workflows/test.yml",
		".github/workflows/lint.yml",
		".github/workflows/release.yml",
		".github/workflows/docs.yml",
		".github/dependabot.yml",
	}, paths)
}

func TestFilesSelection(t *testing.T) {
	files, err := workflow.Files(workflow.Params{}, "test")
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, ".github/workflows/test.yml", files[0].Path)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := workflow.Files(workflow.Params{})
	require.NoError(t, err)

	results, err := workflow.WriteFiles(dir, files, false)
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, workflow.StatusCreated, result.Status)
	}
	assert.FileExists(t, filepath.Join(dir, ".github", "workflows", "test.yml"))
	assert.FileExists(t, filepath.Join(dir, ".github", "dependabot.yml"))

	// A second run finds everything up to date.
	results, err = workflow.WriteFiles(dir, files, false)
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, workflow.StatusUnchanged, result.Status)
	}
}

func TestWriteFilesConflict(t *testing.T) {
	dir := t.TempDir()

	files, err := workflow.Files(workflow.Params{}, "test")
	require.NoError(t, err)

	target := filepath.Join(dir, ".github", "workflows", "test.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("name: handcrafted\n"), 0644))

	results, err := workflow.WriteFiles(dir, files, false)
	assert.ErrorIs(t, err, workflow.ErrConflicts)
	require.Len(t, results, 1)
	assert.Equal(t, workflow.StatusConflict, results[0].Status)
	assert.Contains(t, results[0].Diff, "-name: handcrafted")

	// Nothing may be written on conflict.
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "name: handcrafted\n", string(content))

	results, err = workflow.WriteFiles(dir, files, true)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusUpdated, results[0].Status)
	assert.NotEmpty(t, results[0].Diff)
}
