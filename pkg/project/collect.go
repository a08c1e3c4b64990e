package project

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"

	"github.com/pkgship/pkgship/pkg/executil"
	"github.com/pkgship/pkgship/pkg/gitutil"
	"github.com/pkgship/pkgship/pkg/relver"
)

// ErrNoModule gets returned by Collect, if the start directory is not part
// of a Go module.
var ErrNoModule = errors.New("no go.mod found")

// Params control what Collect gathers.
type Params struct {
	// Dir is the directory to start searching for the module root. Empty
	// means the current directory.
	Dir string

	// GoCommand is the go binary to use. Empty means `go` from PATH.
	GoCommand string

	// Packages are the package patterns that get searched for buildable
	// main packages. Empty means `./...`.
	Packages []string
}

// Collect gathers every fact about the project that the pipeline steps need.
// It fails hard without a go.mod, but degrades gracefully without a git
// repository, since freshly scaffolded projects must still build.
func Collect(ctx context.Context, params Params) (*Info, error) {
	if params.Dir == "" {
		params.Dir = "."
	}
	if params.GoCommand == "" {
		params.GoCommand = "go"
	}
	if len(params.Packages) == 0 {
		params.Packages = []string{"./..."}
	}

	slog.Debug("Collecting project information", "dir", params.Dir)

	info := new(Info)
	info.BuildDate = time.Now().Format(time.RFC3339)

	err := collectModule(info, params.Dir)
	if err != nil {
		return nil, err
	}

	err = collectSystem(ctx, info, params.GoCommand)
	if err != nil {
		return nil, err
	}

	err = collectGit(info)
	if err != nil {
		return nil, err
	}

	err = collectPackages(ctx, info, params)
	if err != nil {
		return nil, err
	}

	return info, nil
}

func collectModule(info *Info, dir string) error {
	root, err := findModuleRoot(dir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return errors.Wrap(err, "failed to read go.mod")
	}

	file, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return errors.Wrap(err, "failed to parse go.mod")
	}

	if file.Module == nil || file.Module.Mod.Path == "" {
		return errors.Errorf("go.mod in %s has no module directive", root)
	}

	info.Go.Module = file.Module.Mod.Path
	info.Go.Dir = root
	info.Go.Name = ModuleName(info.Go.Module)

	if file.Go != nil {
		info.Go.Required = file.Go.Version
	}

	return nil
}

func findModuleRoot(dir string) (string, error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WithStack(err)
	}

	for dir := start; ; {
		_, err := os.Stat(filepath.Join(dir, "go.mod"))
		if err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrNoModule, "searched %s and all parent directories", start)
		}
		dir = parent
	}
}

var reGoVersion = regexp.MustCompile(`go(\d\S*)`)

func collectSystem(ctx context.Context, info *Info, goCommand string) error {
	e := executil.NewChainExecutor(ctx)
	e.Dir = info.Go.Dir

	info.System.OS = e.OutputString(goCommand, "env", "GOOS")
	info.System.Arch = e.OutputString(goCommand, "env", "GOARCH")
	info.System.Ext = e.OutputString(goCommand, "env", "GOEXE")
	versionOut := e.OutputString(goCommand, "version")

	err := e.Err()
	if err != nil {
		return errors.Wrap(err, "failed to inspect go toolchain")
	}

	match := reGoVersion.FindStringSubmatch(versionOut)
	if match == nil {
		info.Go.Version = "unknown"
	} else {
		info.Go.Version = match[1]
	}

	return nil
}

func collectGit(info *Info) error {
	repo, err := gitutil.Open(info.Go.Dir)
	if errors.Is(err, gitutil.ErrNoRepository) {
		slog.Warn("Project is not inside a git repository; version information is unavailable")
		info.Version = relver.Version{Kind: relver.KindNone}
		return nil
	}
	if err != nil {
		return err
	}

	head, err := repo.Head()
	if err != nil {
		// A fresh `git init` has no commits yet. Treat it like a missing
		// repository instead of failing the whole pipeline.
		slog.Warn("Repository has no commits yet; version information is unavailable")
		info.Version = relver.Version{Kind: relver.KindNone}
		return nil
	}

	info.Commit.Hash = head.Hash
	info.Commit.Branch = head.Branch
	info.Commit.Date = head.Date.Format(time.RFC3339)

	dirty, err := repo.DirtyFiles()
	if err != nil {
		return err
	}
	info.Commit.DirtyFiles = dirty

	desc, err := repo.Describe()
	if err != nil {
		return err
	}

	info.Version, err = relver.Parse(desc.String())
	if err != nil {
		return errors.Wrap(err, "failed to parse version")
	}

	return nil
}

func collectPackages(ctx context.Context, info *Info, params Params) error {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     info.Go.Dir,
		Mode:    packages.NeedName | packages.NeedFiles,
	}

	info.Packages.Main = []PackageInfo{}
	for _, pattern := range params.Packages {
		pkgs, err := packages.Load(cfg, pattern)
		if err != nil {
			return errors.Wrapf(err, "failed to load packages for %q", pattern)
		}

		for _, pkg := range pkgs {
			if pkg.Name != "main" {
				continue
			}

			slog.Debug("Found buildable package", "path", pkg.PkgPath)

			target := PackageInfo{
				Path: pkg.PkgPath,
				Name: path.Base(pkg.PkgPath),
			}

			// A main package at the module root gets the project name, which
			// also strips major version suffixes like /v2.
			if pkg.PkgPath == info.Go.Module {
				target.Name = info.Go.Name
			}

			info.Packages.Main = append(info.Packages.Main, target)
		}
	}

	all, err := packages.Load(cfg, "./...")
	if err != nil {
		return errors.Wrap(err, "failed to load packages")
	}

	info.Packages.All = []string{}
	info.Packages.Files = []string{}
	for _, pkg := range all {
		info.Packages.All = append(info.Packages.All, pkg.PkgPath)
		info.Packages.Files = append(info.Packages.Files, pkg.GoFiles...)
	}

	return nil
}
