package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/artifact"
	"github.com/pkgship/pkgship/pkg/executil"
	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/uploadutil"
)

// BuildRunner compiles every main package for every target system into the
// dist directory.
type BuildRunner struct {
	pipeline *Pipeline

	crossCompile []string
	cgo          bool
}

func (r *BuildRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringSliceVarP(
		&r.crossCompile, "cross-compile", "x", nil,
		"Additional target systems (eg linux/arm64). Can be used multiple times.")
	cmd.PersistentFlags().BoolVar(
		&r.cgo, "cgo", false,
		"Enable CGO for the host system build.")

	return nil
}

func (r *BuildRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	return r.build(ctx)
}

func (r *BuildRunner) build(ctx context.Context) error {
	p := r.pipeline
	ctx = logutil.Start(ctx, "build")

	defer p.Inst.Durations.Steps.Stopwatch("build")()

	if len(p.Info.Packages.Main) == 0 {
		return errors.New("project contains no main package")
	}

	err := os.MkdirAll(p.dist(), 0755)
	if err != nil {
		return errors.WithStack(err)
	}

	unlock, err := artifact.LockDist(p.dist())
	if err != nil {
		return err
	}
	defer unlock()

	systems, err := p.systems(r.crossCompile)
	if err != nil {
		return err
	}

	version, _ := p.Info.Version.StringRelease()

	for _, sys := range systems {
		for _, pkg := range p.Info.Packages.Main {
			output := artifact.BinaryFilename(pkg.Name, version, sys)

			logutil.Get(ctx).Info("building",
				"package", pkg.Path,
				"system", sys.Name(),
				"output", output)

			stop := p.Inst.Durations.Building.Stopwatch(output)

			err := r.goBuild(ctx, pkg.Path, p.dist(output), sys.OS, sys.Arch)
			stop()
			if err != nil {
				return errors.Wrapf(err, "failed to build %s for %s", pkg.Path, sys.Name())
			}

			p.Inst.ReadSize(p.dist(), output)

			// The plain binary name stays usable for local development.
			if sys.OS == p.Info.System.OS && sys.Arch == p.Info.System.Arch {
				alias := p.dist(pkg.Name + sys.Ext)
				os.Remove(alias)
				err = os.Symlink(output, alias)
				if err != nil {
					return errors.WithStack(err)
				}
			}
		}
	}

	return nil
}

func (r *BuildRunner) goBuild(ctx context.Context, pkgPath, output, goos, goarch string) error {
	p := r.pipeline

	ldData := []struct {
		name  string
		value string
	}{
		{name: "Name", value: p.name()},
		{name: "Version", value: p.Info.Version.String()},
		{name: "GoModule", value: p.Info.Go.Module},
		{name: "GoPackage", value: pkgPath},
		{name: "GoVersion", value: p.Info.Go.Version},
		{name: "BuildDate", value: p.Info.BuildDate},
		{name: "CommitDate", value: p.Info.Commit.Date},
		{name: "CommitHash", value: p.Info.Commit.Hash},
	}

	ldFlags := "-s -w"
	for _, entry := range ldData {
		ldFlags += fmt.Sprintf(" -X '%s.%s=%s'", p.infoPackage(), entry.name, entry.value)
	}

	cgo := "0"
	if r.cgo || p.Manifest.Build.CGO {
		cgo = "1"
	}

	c := exec.Command("go", "build", "-o", output, "-ldflags", ldFlags, pkgPath)
	c.Dir = p.Info.Go.Dir
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(),
		"GOOS="+goos,
		"GOARCH="+goarch,
		"CGO_ENABLED="+cgo,
	)

	return executil.Run(ctx, c)
}

// PackageRunner derives the distributable artifacts from the built binaries:
// bundles, OS packages and the checksum file.
type PackageRunner struct {
	pipeline *Pipeline

	crossCompile []string
	compressed   bool
	deb          bool
	rpm          bool
}

func (r *PackageRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringSliceVarP(
		&r.crossCompile, "cross-compile", "x", nil,
		"Additional target systems (eg linux/arm64). Can be used multiple times.")
	cmd.PersistentFlags().BoolVar(
		&r.compressed, "compress", false,
		"Create .tgz bundles for POSIX targets and .zip for windows.")
	cmd.PersistentFlags().BoolVar(
		&r.deb, "deb", false,
		"Create .deb packages for linux targets.")
	cmd.PersistentFlags().BoolVar(
		&r.rpm, "rpm", false,
		"Create .rpm packages for linux targets.")

	return nil
}

func (r *PackageRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	_, err = r.createArtifacts(ctx)
	return err
}

func (r *PackageRunner) params() artifact.Params {
	params := r.pipeline.artifactParams()
	params.Compressed = params.Compressed || r.compressed
	params.DEB = params.DEB || r.deb
	params.RPM = params.RPM || r.rpm

	return params
}

func (r *PackageRunner) createArtifacts(ctx context.Context) ([]artifact.Artifact, error) {
	p := r.pipeline
	ctx = logutil.Start(ctx, "package")

	defer p.Inst.Durations.Steps.Stopwatch("package")()

	systems, err := p.systems(r.crossCompile)
	if err != nil {
		return nil, err
	}

	artifacts := artifact.Plan(p.Info, systems, r.params())
	meta := p.meta()

	for _, a := range artifacts {
		if a.Kind == artifact.KindBinary {
			continue
		}

		actx := logutil.WithFields(ctx, logutil.FromStruct(a))
		logutil.Get(actx).Info("creating artifact")

		stop := p.Inst.Durations.Artifacts.Stopwatch(a.Filename)
		err := artifact.Create(p.dist(), a, meta)
		stop()
		if err != nil {
			return nil, err
		}

		p.Inst.ReadSize(p.dist(), a.Filename)
	}

	checksums, err := artifact.WriteChecksums(p.dist(), p.name(), artifacts)
	if err != nil {
		return nil, err
	}
	logutil.Get(ctx).Info("wrote checksums", "file", checksums)

	return artifacts, nil
}

// UploadRunner pushes the dist directory contents to the release bucket.
type UploadRunner struct {
	pipeline *Pipeline

	s3URL string
}

func (r *UploadRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVar(
		&r.s3URL, "s3-url", "",
		"Upload location, overrides release.s3_url from the manifest.")

	return nil
}

func (r *UploadRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	return r.upload(ctx)
}

func (r *UploadRunner) target() string {
	if r.s3URL != "" {
		return r.s3URL
	}

	return r.pipeline.Manifest.Release.S3URL
}

func (r *UploadRunner) upload(ctx context.Context) error {
	p := r.pipeline

	raw := r.target()
	if raw == "" {
		logutil.Get(ctx).Info("no S3 URL configured, skipping upload")
		return nil
	}

	ctx = logutil.Start(ctx, "upload")

	defer p.Inst.Durations.Steps.Stopwatch("upload")()

	base, err := uploadutil.ParseS3URL(raw)
	if err != nil {
		return err
	}

	uploader, err := uploadutil.New(ctx)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(p.dist())
	if err != nil {
		return errors.Wrap(err, "dist directory missing, run `pkgship build` first")
	}

	version, _ := p.Info.Version.StringRelease()

	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 || entry.IsDir() || entry.Name() == ".lock" {
			continue
		}

		dest := base.Subpath(version, entry.Name())

		fctx := logutil.WithField(ctx, "file", entry.Name())
		logutil.Get(fctx).Info("uploading", "target", dest.String())

		tags := url.Values{}
		tags.Set("GoModule", p.Info.Go.Module)
		tags.Set("Branch", p.Info.Commit.Branch)
		tags.Set("ReleaseKind", p.Info.Version.Kind)

		stop := p.Inst.Durations.Upload.Stopwatch(entry.Name())
		err := uploader.Upload(fctx, dest, p.dist(entry.Name()), tags)
		stop()
		if err != nil {
			return err
		}
	}

	return nil
}

// CleanRunner removes the dist directory.
type CleanRunner struct {
	pipeline *Pipeline
}

func (r *CleanRunner) Bind(cmd *cobra.Command) error {
	return nil
}

func (r *CleanRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	files, err := filepath.Glob(r.pipeline.dist("*"))
	if err != nil {
		return errors.WithStack(err)
	}

	for _, file := range files {
		logutil.Get(ctx).Info("removing", "file", file)
		os.RemoveAll(file)
	}

	return nil
}
