package executil

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ChainExecutor runs a sequence of commands and stops on the first failure.
// It avoids error checking after every single command when gathering facts
// from tools like `go env` or `git`.
type ChainExecutor struct {
	ctx context.Context
	err error

	// Dir is the working directory for all commands. Empty means the
	// current directory of the process.
	Dir string
}

func NewChainExecutor(ctx context.Context) *ChainExecutor {
	return &ChainExecutor{
		ctx: ctx,
	}
}

// Err returns the error of the first failed command, if any.
func (e *ChainExecutor) Err() error {
	return e.err
}

// Run executes the command with stdout and stderr attached to the current
// process. It does nothing, if a previous command already failed.
func (e *ChainExecutor) Run(command string, args ...string) {
	if e.ctx.Err() != nil {
		return
	}

	if e.err != nil {
		return
	}

	c := exec.Command(command, args...)
	c.Dir = e.Dir
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	e.err = Run(e.ctx, c)
}

// OutputString executes the command and returns its trimmed stdout. It
// returns an empty string, if a previous command already failed.
func (e *ChainExecutor) OutputString(command string, args ...string) string {
	if e.ctx.Err() != nil {
		return ""
	}

	if e.err != nil {
		return ""
	}

	c := exec.Command(command, args...)
	c.Dir = e.Dir
	out := bytes.Buffer{}
	c.Stdout = &out
	c.Stderr = os.Stderr
	e.err = Run(e.ctx, c)
	return strings.TrimSpace(out.String())
}

// OutputInt64 executes the command and parses its stdout as int64.
func (e *ChainExecutor) OutputInt64(command string, args ...string) int64 {
	if e.ctx.Err() != nil {
		return 0
	}

	if e.err != nil {
		return 0
	}

	var i int64
	i, e.err = strconv.ParseInt(e.OutputString(command, args...), 10, 64)
	return i
}
