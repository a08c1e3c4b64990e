package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/checks"
	"github.com/pkgship/pkgship/pkg/cmdutil"
	"github.com/pkgship/pkgship/pkg/logutil"
)

// CheckRunner runs the quality gate: formatting, static analysis, tests and
// module tidiness.
type CheckRunner struct {
	pipeline *Pipeline

	only     []string
	skip     []string
	parallel int
	json     bool
}

func (r *CheckRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringSliceVar(
		&r.only, "only", nil,
		"Run only the named checks.")
	cmd.PersistentFlags().StringSliceVar(
		&r.skip, "skip", nil,
		"Skip the named checks, in addition to checks.skip from the manifest.")
	cmd.PersistentFlags().IntVar(
		&r.parallel, "parallel", 1,
		"Number of checks to run at once. Values above one run the checks concurrently.")
	cmd.PersistentFlags().BoolVar(
		&r.json, "json", false,
		"Print the results as JSON instead of human readable text.")

	return nil
}

func (r *CheckRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	return r.check(ctx)
}

func (r *CheckRunner) check(ctx context.Context) error {
	p := r.pipeline

	defer p.Inst.Durations.Steps.Stopwatch("check")()

	skip := append(p.Manifest.Checks.Skip, r.skip...)
	selected, err := checks.Select(r.only, skip)
	if err != nil {
		return err
	}

	env := checks.NewEnv(p.Info, p.Manifest)
	runner := &checks.Runner{Parallel: r.parallel}

	results := runner.Run(ctx, env, selected)

	for _, result := range results {
		p.Inst.Durations.Checks.Set(result.Name, result.Duration)
	}

	if r.json {
		err := dumpResultsJSON(results)
		if err != nil {
			return err
		}
	} else {
		printResults(ctx, results)
	}

	if checks.Failed(results) {
		cmdutil.Exit(1)
	}

	return nil
}

func dumpResultsJSON(results []checks.Result) error {
	return dumpJSON(results)
}

func printResults(ctx context.Context, results []checks.Result) {
	log := logutil.Get(ctx)

	for _, result := range results {
		switch result.Status {
		case checks.StatusOK:
			log.Info("check passed",
				"check", result.Name,
				"duration", result.Duration.String())
			continue

		case checks.StatusWarn:
			log.Warn("check has findings",
				"check", result.Name,
				"findings", len(result.Diagnostics))

		default:
			log.Error("check failed",
				"check", result.Name,
				"findings", len(result.Diagnostics))
		}

		if result.Error != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", result.Error)
		}

		for _, d := range result.Diagnostics {
			if d.Position == "" {
				fmt.Fprintf(os.Stderr, "  %s\n", d.Message)
				continue
			}

			fmt.Fprintf(os.Stderr, "  %s: %s", d.Position, d.Message)
			if d.Category != "" {
				fmt.Fprintf(os.Stderr, " (%s)", d.Category)
			}
			fmt.Fprintln(os.Stderr)
		}
	}
}

// FmtRunner rewrites the project's Go files with gofmt formatting and
// grouped imports.
type FmtRunner struct {
	pipeline *Pipeline
}

func (r *FmtRunner) Bind(cmd *cobra.Command) error {
	return nil
}

func (r *FmtRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	env := checks.NewEnv(r.pipeline.Info, r.pipeline.Manifest)

	changed, err := checks.Format(ctx, env)
	if err != nil {
		return err
	}

	log := logutil.Get(ctx)
	for _, file := range changed {
		log.Info("rewrote", "file", file)
	}

	log.Info("formatting done", "changed", len(changed))
	return nil
}
