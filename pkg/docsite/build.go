package docsite

import (
	"embed"
	"encoding/json"
	"go/doc/comment"
	"html/template"
	"os"
	"path"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

//go:embed templates
var templateFS embed.FS

// Build renders the site into outDir as static files. The result is
// self-contained and can be served by any web server or the builtin one.
func Build(site *Site, outDir string) error {
	tmpl, err := template.New("").
		Funcs(sprig.HtmlFuncMap()).
		Funcs(template.FuncMap{
			"docHTML": docHTML,
			"pageDir": pageDir,
		}).
		ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return errors.Wrap(err, "failed to parse site templates")
	}

	err = os.MkdirAll(outDir, 0755)
	if err != nil {
		return errors.WithStack(err)
	}

	err = renderFile(tmpl, "index.html.tmpl", filepath.Join(outDir, "index.html"), site)
	if err != nil {
		return err
	}

	for i := range site.Packages {
		pkg := &site.Packages[i]

		dir := filepath.Join(outDir, filepath.FromSlash(pageDir(pkg.Rel)))
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return errors.WithStack(err)
		}

		err = renderFile(tmpl, "package.html.tmpl", filepath.Join(dir, "index.html"), struct {
			Site    *Site
			Package *Package
		}{site, pkg})
		if err != nil {
			return err
		}
	}

	style, err := templateFS.ReadFile("templates/style.css")
	if err != nil {
		return errors.WithStack(err)
	}
	err = os.WriteFile(filepath.Join(outDir, "style.css"), style, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	if site.Readme != "" {
		err = os.WriteFile(filepath.Join(outDir, "README.md"), []byte(site.Readme), 0644)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return writeManifest(site, outDir)
}

// writeManifest writes site.json, which the serve mode exposes under
// /api/site so tooling can discover what the site contains.
func writeManifest(site *Site, outDir string) error {
	f, err := os.Create(filepath.Join(outDir, "site.json"))
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(site), "failed to write site manifest")
}

func renderFile(tmpl *template.Template, name, target string, data any) error {
	f, err := os.Create(target)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	return errors.Wrapf(tmpl.ExecuteTemplate(f, name, data), "failed to render %s", target)
}

// pageDir maps a package's relative import path to its directory in the
// site. All package pages live below pkg/, so the root package does not
// collide with the site index.
func pageDir(rel string) string {
	if rel == "." {
		return "pkg"
	}

	return path.Join("pkg", rel)
}

// docHTML renders a doc comment to HTML, with the same link and heading
// handling the go doc tooling applies.
func docHTML(text string) template.HTML {
	if text == "" {
		return ""
	}

	var parser comment.Parser
	var printer comment.Printer

	return template.HTML(printer.HTML(parser.Parse(text)))
}
