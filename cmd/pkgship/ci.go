package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/cmdutil"
	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/workflow"
)

// CIRunner writes the GitHub Actions workflows and the dependabot
// configuration into the repository.
type CIRunner struct {
	pipeline *Pipeline

	presets    []string
	goVersions []string
	platforms  []string
	branch     string
	force      bool
}

func (r *CIRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringSliceVar(
		&r.presets, "preset", nil,
		fmt.Sprintf("Workflow presets to write (%v). Default is all.", workflow.Presets))
	cmd.PersistentFlags().StringSliceVar(
		&r.goVersions, "go-version", nil,
		"Go versions for the test matrix (default stable and oldstable).")
	cmd.PersistentFlags().StringSliceVar(
		&r.platforms, "platform", nil,
		"Runner platforms for the test matrix (default ubuntu-latest).")
	cmd.PersistentFlags().StringVar(
		&r.branch, "branch", "",
		"Default branch of the repository (default main).")
	cmd.PersistentFlags().BoolVarP(
		&r.force, "force", "f", false,
		"Overwrite workflow files that were modified manually.")

	return nil
}

func (r *CIRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	params := workflow.Params{
		GoVersions: r.goVersions,
		Platforms:  r.platforms,
		Branch:     r.branch,
	}

	files, err := workflow.Files(params, r.presets...)
	if err != nil {
		return err
	}

	results, writeErr := workflow.WriteFiles(r.pipeline.Info.Go.Dir, files, r.force)

	log := logutil.Get(ctx)
	for _, result := range results {
		switch result.Status {
		case workflow.StatusConflict:
			log.Error("existing file differs", "file", result.Path)
			fmt.Fprint(os.Stderr, result.Diff)
		case workflow.StatusUnchanged:
			log.Debug("unchanged", "file", result.Path)
		default:
			log.Info(result.Status, "file", result.Path)
		}
	}

	if writeErr != nil {
		log.Error("no files written, use --force to overwrite")
		cmdutil.Exit(1)
	}

	return writeErr
}
