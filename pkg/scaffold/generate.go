package scaffold

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"golang.org/x/mod/module"

	"github.com/pkgship/pkgship/pkg/executil"
	"github.com/pkgship/pkgship/pkg/gitutil"
	"github.com/pkgship/pkgship/pkg/workflow"
)

const defaultGoVersion = "1.26"

// Options configure Generate. Name and Module are required; everything else
// has a sensible default.
type Options struct {
	Dir         string // parent directory receiving the project, default "."
	Name        string
	Module      string
	Description string
	Author      string
	License     string // SPDX identifier or "none", default MIT
	Template    string // default "library"
	GoVersion   string // go directive of the generated go.mod
	From        string // directory whose contents overlay the rendered files
	SkipGit     bool
	SkipTidy    bool
}

// Result describes a generated project.
type Result struct {
	Dir      string
	Template string
	Files    []string
}

// Generate renders the template into a new directory named after the
// project, writes the CI workflows, overlays custom files, resolves the
// dependencies and creates the initial commit. It refuses to touch a
// directory that already contains a Go module.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Template == "" {
		opts.Template = "library"
	}
	if opts.License == "" {
		opts.License = "MIT"
	}
	if opts.GoVersion == "" {
		opts.GoVersion = defaultGoVersion
	}

	if opts.Name == "" {
		return nil, errors.New("project name must not be empty")
	}

	err := module.CheckPath(opts.Module)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid module path %q", opts.Module)
	}

	tmpl, err := Get(opts.Template)
	if err != nil {
		return nil, err
	}

	name := slug.Make(opts.Name)
	target := filepath.Join(opts.Dir, name)

	_, err = os.Stat(filepath.Join(target, "go.mod"))
	if err == nil {
		return nil, errors.Errorf("%s already contains a Go module; refusing to overwrite it", target)
	}

	slog.Info("Generating project", "template", opts.Template, "dir", target)

	data := Data{
		Name:        name,
		Module:      opts.Module,
		Package:     packageName(name),
		Owner:       moduleOwner(opts.Module),
		Description: opts.Description,
		Author:      opts.Author,
		License:     opts.License,
		GoVersion:   opts.GoVersion,
		Year:        time.Now().Year(),
		Binary:      tmpl.Metadata().Binary,
	}

	files := tmpl.Files()
	if opts.License != LicenseNone {
		license, err := licenseFile(opts.License)
		if err != nil {
			return nil, err
		}
		files = append(files, license)
	}

	result := &Result{Dir: target, Template: opts.Template}

	for _, file := range files {
		written, err := writeTemplateFile(target, file, data)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, written)
	}

	// CI files come from the workflow presets, so `new` and `ci` stay in
	// sync.
	ci, err := workflow.Files(workflow.Params{})
	if err != nil {
		return nil, err
	}
	for _, file := range ci {
		err = writeRaw(target, file.Path, file.Content, 0644)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, file.Path)
	}

	if opts.From != "" {
		err = copy.Copy(opts.From, target)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to overlay %s", opts.From)
		}
	}

	// The templates pin the build tooling in a tools.go, so the module needs
	// a tidy before it compiles. Running it here means the go.sum lands in
	// the initial commit and CI works without manual steps.
	if !opts.SkipTidy {
		err = goModTidy(ctx, target)
		if err != nil {
			return nil, err
		}
	}

	if !opts.SkipGit {
		repo, err := gitutil.Init(target)
		if err != nil {
			return nil, err
		}

		_, err = repo.CommitAll("Initial commit")
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func goModTidy(ctx context.Context, dir string) error {
	slog.Info("Resolving dependencies", "dir", dir)

	c := exec.Command("go", "mod", "tidy")
	c.Dir = dir
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	return errors.Wrap(executil.Run(ctx, c), "failed to tidy the generated module")
}

func writeTemplateFile(target string, file File, data Data) (string, error) {
	name, err := render(file.Name, file.Name, data)
	if err != nil {
		return "", err
	}

	content, err := render(name, file.Content, data)
	if err != nil {
		return "", err
	}

	mode := os.FileMode(0644)
	if file.Permissions != 0 {
		mode = os.FileMode(file.Permissions)
	}

	err = writeRaw(target, name, []byte(content), mode)
	if err != nil {
		return "", err
	}

	return name, nil
}

func writeRaw(target, name string, content []byte, mode os.FileMode) error {
	if strings.Contains(filepath.Clean(name), "..") {
		return errors.Errorf("invalid file name %q", name)
	}

	path := filepath.Join(target, filepath.FromSlash(name))

	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", name)
	}

	err = os.WriteFile(path, content, mode)
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}

	slog.Debug("Wrote file", "path", name)
	return nil
}
