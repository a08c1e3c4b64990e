package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/cmdutil"
	"github.com/pkgship/pkgship/pkg/executil"
	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/relver"
)

// VerifyRunner checks that a build of the current checkout is reproducible:
// the module cache matches go.sum, the dependency graph is tidy, the
// toolchain matches the pins and the checkout is clean.
type VerifyRunner struct {
	pipeline *Pipeline

	json bool
}

// verifyFinding is a single verification with its outcome.
type verifyFinding struct {
	Name   string
	Status string
	Detail string `json:",omitempty"`
}

const (
	verifyOK   = "ok"
	verifyWarn = "warn"
	verifyFail = "fail"
)

func (r *VerifyRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().BoolVar(
		&r.json, "json", false,
		"Print the report as JSON instead of human readable text.")

	return nil
}

func (r *VerifyRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	findings := []verifyFinding{
		r.verifyModules(ctx),
		r.verifyTidy(ctx),
		r.verifyToolchain(),
		r.verifyToolingPin(),
		r.verifyGitState(),
	}

	failed := false
	for _, f := range findings {
		if f.Status == verifyFail {
			failed = true
		}
	}

	if r.json {
		err := dumpJSON(findings)
		if err != nil {
			return err
		}
	} else {
		log := logutil.Get(ctx)
		for _, f := range findings {
			switch f.Status {
			case verifyOK:
				log.Info("verified", "name", f.Name)
			case verifyWarn:
				log.Warn(f.Detail, "name", f.Name)
			default:
				log.Error(f.Detail, "name", f.Name)
			}
		}
	}

	if failed {
		cmdutil.Exit(1)
	}

	return nil
}

// verifyModules runs `go mod verify`, which recomputes the hashes of the
// module cache against go.sum.
func (r *VerifyRunner) verifyModules(ctx context.Context) verifyFinding {
	f := verifyFinding{Name: "modules", Status: verifyOK}

	c := exec.Command("go", "mod", "verify")
	c.Dir = r.pipeline.Info.Go.Dir

	out := new(bytes.Buffer)
	c.Stdout = out
	c.Stderr = out

	err := executil.Run(ctx, c)
	if err != nil {
		f.Status = verifyFail
		f.Detail = strings.TrimSpace(out.String())
	}

	return f
}

// verifyTidy checks that go.mod and go.sum match the import graph.
func (r *VerifyRunner) verifyTidy(ctx context.Context) verifyFinding {
	f := verifyFinding{Name: "tidy", Status: verifyOK}

	c := exec.Command("go", "mod", "tidy", "-diff")
	c.Dir = r.pipeline.Info.Go.Dir

	out := new(bytes.Buffer)
	c.Stdout = out
	c.Stderr = os.Stderr

	err := executil.Run(ctx, c)
	if err != nil {
		f.Status = verifyFail
		f.Detail = "go.mod or go.sum are not tidy, run `go mod tidy`"
		if out.Len() > 0 {
			f.Detail += "\n" + strings.TrimSpace(out.String())
		}
	}

	return f
}

// verifyToolchain compares the active toolchain with the go directive.
func (r *VerifyRunner) verifyToolchain() verifyFinding {
	f := verifyFinding{Name: "toolchain", Status: verifyOK}

	required := r.pipeline.Info.Go.Required
	if required == "" {
		f.Status = verifyWarn
		f.Detail = "go.mod has no go directive"
		return f
	}

	version := strings.TrimPrefix(r.pipeline.Info.Go.Version, "go")
	if version != required && !strings.HasPrefix(version, required+".") {
		f.Status = verifyWarn
		f.Detail = fmt.Sprintf("toolchain %s differs from the go directive %s",
			r.pipeline.Info.Go.Version, required)
	}

	return f
}

// verifyToolingPin compares the toolchain with the manifest pin, which teams
// use to keep everyone on the same release.
func (r *VerifyRunner) verifyToolingPin() verifyFinding {
	f := verifyFinding{Name: "tooling", Status: verifyOK}

	pin := r.pipeline.Manifest.Tooling.Go
	if pin == "" {
		return f
	}

	version := strings.TrimPrefix(r.pipeline.Info.Go.Version, "go")
	if version != pin && !strings.HasPrefix(version, pin+".") {
		f.Status = verifyFail
		f.Detail = fmt.Sprintf("toolchain %s does not match the pinned version %s",
			r.pipeline.Info.Go.Version, pin)
	}

	return f
}

// verifyGitState reports uncommitted changes and untagged builds, which make
// the build impossible to reproduce from the repository alone.
func (r *VerifyRunner) verifyGitState() verifyFinding {
	f := verifyFinding{Name: "git", Status: verifyOK}

	info := r.pipeline.Info

	switch {
	case len(info.Commit.DirtyFiles) > 0:
		f.Status = verifyWarn
		f.Detail = fmt.Sprintf("%d uncommitted files, builds are not reproducible",
			len(info.Commit.DirtyFiles))
	case info.Version.Kind == relver.KindNone:
		f.Status = verifyWarn
		f.Detail = "not a git repository, version information is unavailable"
	case !info.Version.IsRelease():
		f.Status = verifyWarn
		f.Detail = fmt.Sprintf("HEAD is not on a release tag (version is %s)", info.Version)
	}

	return f
}
