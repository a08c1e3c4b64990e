package checks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pkgship/pkgship/pkg/executil"
)

// TestCheck runs `go test` with coverage over all project packages. Failing
// packages become diagnostics; when the manifest sets a coverage threshold,
// packages below it fail the check as well.
type TestCheck struct{}

func (c *TestCheck) Name() string {
	return "test"
}

var (
	reTestFail  = regexp.MustCompile(`^FAIL\s+(\S+)`)
	reTestCover = regexp.MustCompile(`^ok\s+(\S+)\s+\S+\s+coverage:\s+([0-9.]+)% of statements`)
)

func (c *TestCheck) Run(ctx context.Context, env *Env) ([]Diagnostic, error) {
	out := new(bytes.Buffer)

	cmd := exec.Command(env.GoCommand, "test", "-cover", "./...")
	cmd.Dir = env.Info.Go.Dir
	cmd.Stdout = io.MultiWriter(out, os.Stderr)
	cmd.Stderr = os.Stderr

	runErr := executil.Run(ctx, cmd)

	diags := []Diagnostic{}
	for _, line := range strings.Split(out.String(), "\n") {
		line = strings.TrimSpace(line)

		if m := reTestFail.FindStringSubmatch(line); m != nil {
			diags = append(diags, Diagnostic{
				Position: m[1],
				Message:  "package tests failed",
				Category: "go test",
			})
			continue
		}

		if m := reTestCover.FindStringSubmatch(line); m != nil && env.Config.CoverMin > 0 {
			coverage, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}

			if coverage < env.Config.CoverMin {
				diags = append(diags, Diagnostic{
					Position: m[1],
					Message: fmt.Sprintf("coverage %.1f%% is below the required %.1f%%",
						coverage, env.Config.CoverMin),
					Category: "coverage",
				})
			}
		}
	}

	if runErr != nil && len(diags) == 0 {
		// The test binary failed without a parseable FAIL line, eg because
		// a package does not compile.
		return nil, errors.Wrap(runErr, "failed to run go test")
	}

	return diags, nil
}
