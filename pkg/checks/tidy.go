package checks

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkgship/pkgship/pkg/executil"
)

// TidyCheck verifies that go.mod and go.sum match the source code, using
// `go mod tidy -diff`, which leaves the module files untouched.
type TidyCheck struct{}

func (c *TidyCheck) Name() string {
	return "tidy"
}

func (c *TidyCheck) Run(ctx context.Context, env *Env) ([]Diagnostic, error) {
	out := new(bytes.Buffer)

	cmd := exec.Command(env.GoCommand, "mod", "tidy", "-diff")
	cmd.Dir = env.Info.Go.Dir
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	err := executil.Run(ctx, cmd)
	if err == nil {
		return nil, nil
	}

	// A non-zero exit with a diff on stdout is the expected "not tidy"
	// signal. Anything else is an infrastructure failure.
	diff := strings.TrimSpace(out.String())
	if diff == "" {
		return nil, err
	}

	return []Diagnostic{{
		Position: "go.mod",
		Message:  "go.mod and go.sum are not tidy (run `go mod tidy`)",
		Category: "go mod",
	}}, nil
}
