package docsite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/manifest"
	"github.com/pkgship/pkgship/pkg/project"
	"github.com/pkgship/pkgship/pkg/testutil"
)

func testSite() *Site {
	return &Site{
		Title:     "Demo",
		Module:    "example.com/demo",
		Version:   "v1.2.3",
		Generated: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		Readme:    "# Demo\n\nA demo project.\n",
		Packages: []Package{
			{
				Path:     "example.com/demo",
				Rel:      ".",
				Name:     "demo",
				Synopsis: "Package demo greets.",
				Doc:      "Package demo greets.\n",
				Consts: []Value{{
					Names: []string{"DefaultName"},
					Doc:   "DefaultName is used when no name is given.\n",
					Decl:  `const DefaultName = "world"`,
				}},
				Funcs: []Func{{
					Name:      "Greet",
					Doc:       "Greet returns a greeting for name.\n",
					Signature: "func Greet(name string) string",
				}},
				Types: []Type{{
					Name: "Greeter",
					Doc:  "Greeter greets with a fixed prefix.\n",
					Decl: "type Greeter struct {\n\tPrefix string\n}",
					Methods: []Func{{
						Name:      "Greet",
						Signature: "func (g Greeter) Greet(name string) string",
					}},
				}},
			},
			{
				Path:     "example.com/demo/internal/farewell",
				Rel:      "internal/farewell",
				Name:     "farewell",
				Synopsis: "Package farewell says goodbye.",
				Doc:      "Package farewell says goodbye.\n",
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	testutil.AssertGolden(t,
		"test-fixtures/markdown-golden.md",
		[]byte(Markdown(testSite())))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()

	site := testSite()
	require.NoError(t, Build(site, dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "example.com/demo")
	assert.Contains(t, string(index), `href="pkg/"`)
	assert.Contains(t, string(index), `href="pkg/internal/farewell/"`)

	page, err := os.ReadFile(filepath.Join(dir, "pkg", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "package demo")
	assert.Contains(t, string(page), "func Greet(name string) string")
	assert.Contains(t, string(page), `href="../style.css"`)

	sub, err := os.ReadFile(filepath.Join(dir, "pkg", "internal", "farewell", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(sub), `href="../../../style.css"`)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, site.Readme, string(readme))

	for _, name := range []string{"style.css", "site.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestPageDir(t *testing.T) {
	assert.Equal(t, "pkg", pageDir("."))
	assert.Equal(t, "pkg/internal/farewell", pageDir("internal/farewell"))
}

func TestRelImportPath(t *testing.T) {
	assert.Equal(t, ".", relImportPath("example.com/demo", "example.com/demo"))
	assert.Equal(t, "cli", relImportPath("example.com/demo", "example.com/demo/cli"))
}

func TestDocHTML(t *testing.T) {
	html := string(docHTML("Greet returns a greeting.\n\nDeprecated: use Salute.\n"))
	assert.Contains(t, html, "<p>Greet returns a greeting.")
}

func TestWatchRelevant(t *testing.T) {
	assert.True(t, watchRelevant("pkg/demo/demo.go"))
	assert.True(t, watchRelevant("README.md"))
	assert.False(t, watchRelevant("dist/demo-v1.0.0-linux-amd64"))
	assert.False(t, watchRelevant("go.sum"))
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	writeFile("go.mod", "module example.com/demo\n\ngo 1.24\n")
	writeFile("demo.go", strings.Join([]string{
		"// Package demo greets.",
		"package demo",
		"",
		"// DefaultName is used when no name is given.",
		`const DefaultName = "world"`,
		"",
		"// Greet returns a greeting for name.",
		"func Greet(name string) string {",
		`	return "hello " + name`,
		"}",
		"",
	}, "\n"))

	info := &project.Info{}
	info.Go.Module = "example.com/demo"
	info.Go.Name = "demo"
	info.Go.Dir = dir

	site, err := Extract(context.Background(), info, manifest.DocsConfig{})
	require.NoError(t, err)

	assert.Equal(t, "demo", site.Title)
	require.Len(t, site.Packages, 1)

	pkg := site.Packages[0]
	assert.Equal(t, "example.com/demo", pkg.Path)
	assert.Equal(t, ".", pkg.Rel)
	assert.Equal(t, "Package demo greets.", pkg.Synopsis)
	require.Len(t, pkg.Consts, 1)
	assert.Equal(t, []string{"DefaultName"}, pkg.Consts[0].Names)
	require.Len(t, pkg.Funcs, 1)
	assert.Equal(t, "func Greet(name string) string", pkg.Funcs[0].Signature)
}
