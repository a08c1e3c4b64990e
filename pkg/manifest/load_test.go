package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/manifest"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, manifest.Filename), []byte(content), 0644)
	require.NoError(t, err)
}

func TestLoadDefaults(t *testing.T) {
	m, err := manifest.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"./..."}, m.Build.Targets)
	assert.Equal(t, "https://proxy.golang.org", m.Release.Proxy)
	assert.Equal(t, "https://sum.golang.org", m.Release.SumDB)
	assert.Equal(t, "localhost:8911", m.Docs.Listen)
	assert.Zero(t, m.Checks.CoverMin)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
project:
  name: shipyard
  description: example project
  license: MIT
build:
  cross_compile:
    - linux/amd64
    - darwin/arm64
  compressed: true
checks:
  covermin: 75
  exclude:
    - "**/*_gen.go"
`)

	m, err := manifest.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "shipyard", m.Project.Name)
	assert.Equal(t, "MIT", m.Project.License)
	assert.Equal(t, []string{"linux/amd64", "darwin/arm64"}, m.Build.CrossCompile)
	assert.True(t, m.Build.Compressed)
	assert.InDelta(t, 75.0, m.Checks.CoverMin, 0.001)
	assert.Equal(t, []string{"**/*_gen.go"}, m.Checks.Exclude)

	// Defaults survive for keys the file does not mention.
	assert.Equal(t, []string{"./..."}, m.Build.Targets)
	assert.Equal(t, "https://proxy.golang.org", m.Release.Proxy)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
release:
  proxy: https://proxy.example.com
`)

	t.Setenv("PKGSHIP_RELEASE_PROXY", "https://goproxy.example.org")
	t.Setenv("PKGSHIP_BUILD_CROSS_COMPILE", "linux/amd64,windows/amd64")

	m, err := manifest.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://goproxy.example.org", m.Release.Proxy)
	assert.Equal(t, []string{"linux/amd64", "windows/amd64"}, m.Build.CrossCompile)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "covermin out of range",
			content: `
checks:
  covermin: 150
`,
		},
		{
			name: "invalid homepage",
			content: `
project:
  homepage: not-a-url
`,
		},
		{
			name: "cross compile without slash",
			content: `
build:
  cross_compile:
    - linuxamd64
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)

			_, err := manifest.Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadBrokenYAML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "project: [\n")

	_, err := manifest.Load(dir)
	assert.Error(t, err)
}
