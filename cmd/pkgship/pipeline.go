package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pkgship/pkgship/pkg/artifact"
	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/manifest"
	"github.com/pkgship/pkgship/pkg/project"
)

// Pipeline is the shared state of all project-bound commands: the manifest,
// the collected project info and the instrumentation. Commands that operate
// on an existing project call Setup first; `pkgship new` does not, since it
// runs outside any module.
type Pipeline struct {
	Manifest *manifest.Manifest
	Info     *project.Info
	Inst     *Instrumentation

	ready bool
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		Inst: NewInstrumentation(),
	}
}

// Setup loads the manifest and collects the project info. It is idempotent,
// so every command can call it without caring whether another one already
// did.
func (p *Pipeline) Setup(ctx context.Context) error {
	if p.ready {
		return nil
	}

	defer p.Inst.Durations.Steps.Stopwatch("setup")()

	m, err := manifest.Load(".")
	if err != nil {
		return err
	}
	p.Manifest = m

	info, err := project.Collect(ctx, project.Params{
		Packages: m.Build.Targets,
	})
	if err != nil {
		return err
	}
	p.Info = info

	if logutil.Level.Level() <= slog.LevelDebug {
		dumpJSON(info)
	}

	if len(info.Commit.DirtyFiles) > 0 {
		logutil.Get(ctx).Warn("The repository contains uncommitted files",
			"count", len(info.Commit.DirtyFiles))
	}

	p.ready = true
	return nil
}

// dist returns a path inside the dist directory of the project.
func (p *Pipeline) dist(parts ...string) string {
	parts = append([]string{p.Info.Go.Dir, "dist"}, parts...)
	return filepath.Join(parts...)
}

// name is the artifact name of the project, from the manifest or derived
// from the module path.
func (p *Pipeline) name() string {
	if p.Manifest.Project.Name != "" {
		return p.Manifest.Project.Name
	}

	return p.Info.Go.Name
}

// meta describes the project for OS packages.
func (p *Pipeline) meta() artifact.Meta {
	version, release := p.Info.Version.StringRelease()

	return artifact.Meta{
		Name:        p.name(),
		Version:     version,
		Release:     release,
		Description: p.Manifest.Project.Description,
		Homepage:    p.Manifest.Project.Homepage,
		License:     p.Manifest.Project.License,
		Maintainer:  p.Manifest.Project.Maintainer,
	}
}

// systems returns the build targets: the host system plus the cross compile
// targets from the manifest and the command line.
func (p *Pipeline) systems(extra []string) ([]project.SystemInfo, error) {
	systems := []project.SystemInfo{p.Info.System}
	seen := map[string]bool{p.Info.System.Name(): true}

	for _, target := range append(p.Manifest.Build.CrossCompile, extra...) {
		sys, err := project.ParseSystem(target)
		if err != nil {
			return nil, err
		}

		if seen[sys.Name()] {
			continue
		}
		seen[sys.Name()] = true

		systems = append(systems, sys)
	}

	return systems, nil
}

// artifactParams merges the manifest build settings with command line
// overrides.
func (p *Pipeline) artifactParams() artifact.Params {
	return artifact.Params{
		Compressed: p.Manifest.Build.Compressed,
		DEB:        p.Manifest.Build.DEB,
		RPM:        p.Manifest.Build.RPM,
	}
}

// infoPackage is the package receiving the version ldflags.
func (p *Pipeline) infoPackage() string {
	if p.Manifest.Build.InfoPackage != "" {
		return p.Manifest.Build.InfoPackage
	}

	return p.Info.Go.Module + "/pkg/cmdutil"
}

// requireCleanRepo fails when the checkout has uncommitted changes. Used by
// the release commands, since a tag must point at a committed state.
func (p *Pipeline) requireCleanRepo() error {
	if len(p.Info.Commit.DirtyFiles) > 0 {
		return errors.Errorf("repository has %d uncommitted files, commit or stash them first",
			len(p.Info.Commit.DirtyFiles))
	}

	return nil
}
