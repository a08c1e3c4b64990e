package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/docsite"
	"github.com/pkgship/pkgship/pkg/logutil"
)

// DocsRunner turns the doc comments of the project into a documentation
// site. The runner backs three subcommands that share the flags: build
// renders the static site, preview prints it to the terminal and serve runs
// the live server.
type DocsRunner struct {
	pipeline *Pipeline

	out    string
	listen string
	admin  string
}

func (r *DocsRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVarP(
		&r.out, "out", "o", "",
		"Output directory of the site (default dist/site).")
	cmd.PersistentFlags().StringVar(
		&r.listen, "listen", "",
		"Listen address of the documentation server, overrides docs.listen.")
	cmd.PersistentFlags().StringVar(
		&r.admin, "admin", "",
		"Listen address of the admin endpoints, overrides docs.admin.")

	return nil
}

// Run without a subcommand builds the site, which is the most common use.
func (r *DocsRunner) Run(ctx context.Context, args []string) error {
	return r.RunBuild(ctx, args)
}

func (r *DocsRunner) outDir() string {
	if r.out != "" {
		return r.out
	}

	return r.pipeline.dist("site")
}

func (r *DocsRunner) RunBuild(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	defer r.pipeline.Inst.Durations.Steps.Stopwatch("docs")()

	site, err := docsite.Extract(ctx, r.pipeline.Info, r.pipeline.Manifest.Docs)
	if err != nil {
		return err
	}

	err = docsite.Build(site, r.outDir())
	if err != nil {
		return err
	}

	logutil.Get(ctx).Info("documentation built",
		"packages", len(site.Packages),
		"dir", r.outDir())

	return nil
}

func (r *DocsRunner) RunPreview(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	site, err := docsite.Extract(ctx, r.pipeline.Info, r.pipeline.Manifest.Docs)
	if err != nil {
		return err
	}

	return docsite.Preview(site, os.Stdout)
}

func (r *DocsRunner) RunServe(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	cfg := r.pipeline.Manifest.Docs
	if r.listen != "" {
		cfg.Listen = r.listen
	}
	if r.admin != "" {
		cfg.Admin = r.admin
	}

	return docsite.Serve(ctx, docsite.ServeParams{
		Info:   r.pipeline.Info,
		Config: cfg,
		OutDir: r.outDir(),
	})
}
