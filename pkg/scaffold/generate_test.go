package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/gitutil"
)

func TestGenerateLibrary(t *testing.T) {
	dir := t.TempDir()

	result, err := Generate(context.Background(), Options{
		Dir:         dir,
		Name:        "Demo Lib",
		Module:      "github.com/acme/demo-lib",
		Description: "A demonstration library.",
		Author:      "Acme Inc",
		SkipTidy:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "demo-lib"), result.Dir)

	for _, name := range []string{
		"go.mod",
		".pkgship.yaml",
		"README.md",
		"LICENSE",
		".gitignore",
		"CONTRIBUTING.md",
		".github/CODEOWNERS",
		".github/workflows/test.yml",
		".github/workflows/release.yml",
		".github/dependabot.yml",
		"demolib.go",
		"demolib_test.go",
		"tools.go",
	} {
		_, err := os.Stat(filepath.Join(result.Dir, name))
		assert.NoError(t, err, "missing %s", name)
	}

	gomod, err := os.ReadFile(filepath.Join(result.Dir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(gomod), "module github.com/acme/demo-lib")

	codeowners, err := os.ReadFile(filepath.Join(result.Dir, ".github", "CODEOWNERS"))
	require.NoError(t, err)
	assert.Contains(t, string(codeowners), "@acme")

	// The initial commit leaves a clean repository behind.
	repo, err := gitutil.Open(result.Dir)
	require.NoError(t, err)

	dirty, err := repo.DirtyFiles()
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestGenerateCLI(t *testing.T) {
	dir := t.TempDir()

	result, err := Generate(context.Background(), Options{
		Dir:      dir,
		Name:     "shipctl",
		Module:   "example.com/tools/shipctl",
		Template: "cli",
		License:  LicenseNone,
		SkipGit:  true,
		SkipTidy: true,
	})
	require.NoError(t, err)

	for _, name := range []string{"main.go", "cmd/root.go", "pkg/cmdutil/version.go"} {
		_, err := os.Stat(filepath.Join(result.Dir, name))
		assert.NoError(t, err, "missing %s", name)
	}

	_, err = os.Stat(filepath.Join(result.Dir, "LICENSE"))
	assert.True(t, os.IsNotExist(err), "LICENSE should not exist")

	root, err := os.ReadFile(filepath.Join(result.Dir, "cmd", "root.go"))
	require.NoError(t, err)
	assert.Contains(t, string(root), `"example.com/tools/shipctl/pkg/cmdutil"`)
	assert.False(t, strings.Contains(string(root), "{{"), "unrendered template expression")
}

func TestGenerateRefusesExistingModule(t *testing.T) {
	dir := t.TempDir()

	opts := Options{
		Dir:     dir,
		Name:     "twice",
		Module:   "example.com/twice",
		SkipGit:  true,
		SkipTidy: true,
	}

	_, err := Generate(context.Background(), opts)
	require.NoError(t, err)

	_, err = Generate(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}

func TestGenerateValidation(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{name: "empty name", opts: Options{Module: "example.com/x"}},
		{name: "invalid module", opts: Options{Name: "x", Module: "not a module path"}},
		{name: "unknown template", opts: Options{Name: "x", Module: "example.com/x", Template: "nope"}},
		{name: "unknown license", opts: Options{Name: "x", Module: "example.com/x", License: "WTFPL"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.Dir = t.TempDir()
			tc.opts.SkipGit = true
			tc.opts.SkipTidy = true

			_, err := Generate(context.Background(), tc.opts)
			assert.Error(t, err)
		})
	}
}

func TestGenerateOverlay(t *testing.T) {
	overlay := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(overlay, "NOTICE"), []byte("custom\n"), 0644))

	dir := t.TempDir()
	result, err := Generate(context.Background(), Options{
		Dir:     dir,
		Name:     "overlaid",
		Module:   "example.com/overlaid",
		From:     overlay,
		SkipGit:  true,
		SkipTidy: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(result.Dir, "NOTICE"))
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}

func TestPackageName(t *testing.T) {
	cases := map[string]string{
		"demo-lib":  "demolib",
		"Demo":      "demo",
		"9lives":    "pkg9lives",
		"--":        "pkg",
		"ship_ctl":  "ship_ctl",
		"Mixed-Bag": "mixedbag",
	}

	for in, want := range cases {
		assert.Equal(t, want, packageName(in), "packageName(%q)", in)
	}
}

func TestModuleOwner(t *testing.T) {
	assert.Equal(t, "acme", moduleOwner("github.com/acme/tool"))
	assert.Equal(t, "acme", moduleOwner("gitlab.com/acme/tool/v2"))
	assert.Equal(t, "", moduleOwner("example.com/tool"))
	assert.Equal(t, "", moduleOwner("tool"))
}

func TestList(t *testing.T) {
	metas := List()
	require.Len(t, metas, 2)
	assert.Equal(t, "cli", metas[0].Name)
	assert.Equal(t, "library", metas[1].Name)
}

func TestGoModTidy(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"),
		[]byte("module example.com/tidydemo\n\ngo 1.22\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"),
		[]byte("package tidydemo\n\nimport \"fmt\"\n\nfunc Hello() string { return fmt.Sprint(\"hi\") }\n"), 0644))

	require.NoError(t, goModTidy(context.Background(), dir))

	// A stdlib-only module stays as it is; the point is that the command
	// runs in the generated directory without touching the working dir.
	gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(gomod), "module example.com/tidydemo")
}
