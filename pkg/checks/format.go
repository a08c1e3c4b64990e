package checks

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/imports"

	"github.com/pkgship/pkgship/pkg/executil"
)

// FormatCheck verifies that all files are formatted with `gofmt -s`. It
// shells out to gofmt like the CI does, so local runs and CI cannot
// disagree about formatting.
type FormatCheck struct{}

func (c *FormatCheck) Name() string {
	return "format"
}

func (c *FormatCheck) Run(ctx context.Context, env *Env) ([]Diagnostic, error) {
	files := env.Files()
	if len(files) == 0 {
		return nil, nil
	}

	args := append([]string{"-s", "-l"}, files...)

	out := new(bytes.Buffer)
	cmd := exec.Command("gofmt", args...)
	cmd.Dir = env.Info.Go.Dir
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	err := executil.Run(ctx, cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run gofmt")
	}

	diags := []Diagnostic{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}

		diags = append(diags, Diagnostic{
			Position: relPath(env.Info.Go.Dir, line),
			Message:  "file is not gofmt-formatted (run `pkgship fmt`)",
			Category: "gofmt",
		})
	}

	return diags, nil
}

// Format rewrites all project files with the goimports semantics: gofmt
// simplification plus import grouping, with the project module as local
// prefix. It returns the files that changed.
func Format(ctx context.Context, env *Env) ([]string, error) {
	imports.LocalPrefix = env.Info.Go.Module

	changed := []string{}
	for _, file := range env.Files() {
		if ctx.Err() != nil {
			return changed, errors.WithStack(ctx.Err())
		}

		src, err := os.ReadFile(file)
		if err != nil {
			return changed, errors.Wrapf(err, "failed to read %s", file)
		}

		formatted, err := imports.Process(file, src, nil)
		if err != nil {
			return changed, errors.Wrapf(err, "failed to format %s", file)
		}

		if bytes.Equal(src, formatted) {
			continue
		}

		err = os.WriteFile(file, formatted, 0644)
		if err != nil {
			return changed, errors.Wrapf(err, "failed to write %s", file)
		}

		changed = append(changed, relPath(env.Info.Go.Dir, file))
	}

	return changed, nil
}

func relPath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return file
	}
	return rel
}
