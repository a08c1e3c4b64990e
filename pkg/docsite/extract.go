// Package docsite builds a browsable documentation site from the doc
// comments of the project's own packages. It renders static HTML into the
// dist directory, previews as markdown in the terminal and serves the site
// with live rebuilds on file changes.
package docsite

import (
	"bytes"
	"context"
	"go/ast"
	"go/doc"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"

	"github.com/pkgship/pkgship/pkg/manifest"
	"github.com/pkgship/pkgship/pkg/project"
)

// Site is the extracted documentation of a whole module.
type Site struct {
	Title     string
	Module    string
	Version   string
	Generated time.Time
	Packages  []Package

	// Readme is the raw content of the project README, passed through into
	// the generated site.
	Readme string `json:"-"`
}

// Package is the documentation of a single package.
type Package struct {
	Path     string
	Rel      string // import path relative to the module root, "." for the root
	Name     string
	Synopsis string
	Doc      string

	Consts   []Value
	Vars     []Value
	Funcs    []Func
	Types    []Type
	Examples []Example
}

// Value is a const or var declaration block.
type Value struct {
	Names []string
	Doc   string
	Decl  string
}

// Func is a function or method.
type Func struct {
	Name      string
	Doc       string
	Signature string
}

// Type is a type with its associated constructors and methods.
type Type struct {
	Name    string
	Doc     string
	Decl    string
	Funcs   []Func
	Methods []Func
}

// Example is a runnable example from the package.
type Example struct {
	Name string
	Doc  string
	Code string
}

// Extract loads all packages of the project and converts their doc comments
// into the Site model. Test-only and unexported details are left out, like
// godoc does.
func Extract(ctx context.Context, info *project.Info, cfg manifest.DocsConfig) (*Site, error) {
	site := &Site{
		Title:     cfg.Title,
		Module:    info.Go.Module,
		Version:   info.Version.String(),
		Generated: time.Now(),
	}
	if site.Title == "" {
		site.Title = info.Go.Name
	}

	readme, err := os.ReadFile(filepath.Join(info.Go.Dir, "README.md"))
	if err == nil {
		site.Readme = string(readme)
	}

	cfgLoad := &packages.Config{
		Context: ctx,
		Dir:     info.Go.Dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedModule,
	}

	pkgs, err := packages.Load(cfgLoad, "./...")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}

	for _, pkg := range pkgs {
		if len(pkg.Syntax) == 0 {
			continue
		}

		docPkg, err := doc.NewFromFiles(pkg.Fset, pkg.Syntax, pkg.PkgPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract docs for %s", pkg.PkgPath)
		}

		site.Packages = append(site.Packages,
			convertPackage(info.Go.Module, pkg.Fset, pkg.Syntax, docPkg))
	}

	sort.Slice(site.Packages, func(i, j int) bool {
		return site.Packages[i].Path < site.Packages[j].Path
	})

	return site, nil
}

func convertPackage(module string, fset *token.FileSet, files []*ast.File, docPkg *doc.Package) Package {
	pkg := Package{
		Path:     docPkg.ImportPath,
		Rel:      relImportPath(module, docPkg.ImportPath),
		Name:     docPkg.Name,
		Synopsis: docPkg.Synopsis(docPkg.Doc),
		Doc:      docPkg.Doc,
	}

	for _, v := range docPkg.Consts {
		pkg.Consts = append(pkg.Consts, convertValue(fset, v))
	}
	for _, v := range docPkg.Vars {
		pkg.Vars = append(pkg.Vars, convertValue(fset, v))
	}
	for _, f := range docPkg.Funcs {
		pkg.Funcs = append(pkg.Funcs, convertFunc(fset, f))
	}
	for _, t := range docPkg.Types {
		typ := Type{
			Name: t.Name,
			Doc:  t.Doc,
			Decl: printNode(fset, t.Decl),
		}
		for _, f := range t.Funcs {
			typ.Funcs = append(typ.Funcs, convertFunc(fset, f))
		}
		for _, m := range t.Methods {
			typ.Methods = append(typ.Methods, convertFunc(fset, m))
		}
		pkg.Types = append(pkg.Types, typ)
	}

	for _, ex := range doc.Examples(files...) {
		pkg.Examples = append(pkg.Examples, Example{
			Name: ex.Name,
			Doc:  ex.Doc,
			Code: printNode(fset, ex.Code),
		})
	}

	return pkg
}

func convertValue(fset *token.FileSet, v *doc.Value) Value {
	return Value{
		Names: v.Names,
		Doc:   v.Doc,
		Decl:  printNode(fset, v.Decl),
	}
}

func convertFunc(fset *token.FileSet, f *doc.Func) Func {
	// The declaration is printed without the body, which turns it into the
	// signature line godoc shows.
	decl := *f.Decl
	decl.Body = nil

	return Func{
		Name:      f.Name,
		Doc:       f.Doc,
		Signature: printNode(fset, &decl),
	}
}

func printNode(fset *token.FileSet, node any) string {
	buf := new(bytes.Buffer)

	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	err := cfg.Fprint(buf, fset, node)
	if err != nil {
		return ""
	}

	return buf.String()
}

func relImportPath(module, importPath string) string {
	if importPath == module {
		return "."
	}

	return strings.TrimPrefix(importPath, module+"/")
}
