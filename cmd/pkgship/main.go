package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/cmdutil"
	"github.com/pkgship/pkgship/pkg/logutil"
)

func main() {
	defer cmdutil.HandleExit()
	if err := NewRootCommand().Execute(); err != nil {
		slog.Error(err.Error())
		cmdutil.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	pipeline := NewPipeline()

	var (
		checkRunner   = &CheckRunner{pipeline: pipeline}
		fmtRunner     = &FmtRunner{pipeline: pipeline}
		buildRunner   = &BuildRunner{pipeline: pipeline}
		packageRunner = &PackageRunner{pipeline: pipeline}
		uploadRunner  = &UploadRunner{pipeline: pipeline}
		cleanRunner   = &CleanRunner{pipeline: pipeline}
		ciRunner      = &CIRunner{pipeline: pipeline}
		docsRunner    = &DocsRunner{pipeline: pipeline}
		releaseRunner = &ReleaseRunner{pipeline: pipeline}
		verifyRunner  = &VerifyRunner{pipeline: pipeline}
	)

	return cmdutil.New(
		"pkgship", "Build, check, document and release Go modules",
		cmdutil.WithLoggingOptions(),
		cmdutil.WithLogVerboseFlag(),
		cmdutil.WithVersionCommand(),
		cmdutil.WithVersionLog(slog.LevelDebug),

		cmdutil.WithRunner(&AllRunner{
			pipeline: pipeline,
			check:    checkRunner,
			build:    buildRunner,
			pack:     packageRunner,
			upload:   uploadRunner,
		}),

		cmdutil.WithSubCommand(cmdutil.New(
			"new [name]", "Scaffold a new project",
			cmdutil.WithRunner(new(NewRunner)))),

		cmdutil.WithSubCommand(cmdutil.New(
			"ci", "Write the GitHub Actions workflows",
			cmdutil.WithRunner(ciRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"check", "Run formatting, static analysis, test and tidy checks",
			cmdutil.WithRunner(checkRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"fmt", "Rewrite the Go files with standard formatting",
			cmdutil.WithRunner(fmtRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"build", "Compile the main packages for all target systems",
			cmdutil.WithRunner(buildRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"package", "Create bundles, OS packages and checksums from the built binaries",
			cmdutil.WithRunner(packageRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"upload", "Upload the dist directory to the release bucket",
			cmdutil.WithRunner(uploadRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"docs", "Generate the documentation site",
			cmdutil.WithRunner(docsRunner),
			cmdutil.WithSubCommand(cmdutil.New(
				"build", "Render the static documentation site",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return docsRunner.RunBuild(ctx, args)
				}))),
			cmdutil.WithSubCommand(cmdutil.New(
				"preview", "Render the documentation to the terminal",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return docsRunner.RunPreview(ctx, args)
				}))),
			cmdutil.WithSubCommand(cmdutil.New(
				"serve", "Serve the documentation with live rebuilds",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return docsRunner.RunServe(ctx, args)
				}))))),

		cmdutil.WithSubCommand(cmdutil.New(
			"release", "Plan, tag, publish and register releases",
			cmdutil.WithRunner(releaseRunner),
			cmdutil.WithSubCommand(cmdutil.New(
				"plan", "Show the version the commits since the last release ask for",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return releaseRunner.RunPlan(ctx, args)
				}))),
			cmdutil.WithSubCommand(cmdutil.New(
				"notes", "Print the release notes in markdown",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return releaseRunner.RunNotes(ctx, args)
				}))),
			cmdutil.WithSubCommand(cmdutil.New(
				"tag", "Create the release tag",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return releaseRunner.RunTag(ctx, args)
				}))),
			cmdutil.WithSubCommand(cmdutil.New(
				"publish", "Create the GitHub release with the built artifacts",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return releaseRunner.RunPublish(ctx, args)
				}))),
			cmdutil.WithSubCommand(cmdutil.New(
				"register", "Wait for the module proxy to index the release",
				cmdutil.WithRun(func(ctx context.Context, cmd *cobra.Command, args []string) error {
					return releaseRunner.RunRegister(ctx, args)
				}))))),

		cmdutil.WithSubCommand(cmdutil.New(
			"verify", "Verify that the build is reproducible",
			cmdutil.WithRunner(verifyRunner))),

		cmdutil.WithSubCommand(cmdutil.New(
			"clean", "Remove the dist directory",
			cmdutil.WithRunner(cleanRunner))),
	)
}

// AllRunner is the default command: the full local pipeline in the order a
// release build runs it.
type AllRunner struct {
	pipeline *Pipeline

	check  *CheckRunner
	build  *BuildRunner
	pack   *PackageRunner
	upload *UploadRunner

	crossCompile []string
	compressed   bool
	deb          bool
	rpm          bool
}

func (r *AllRunner) Bind(cmd *cobra.Command) error {
	// The artifact flags are local to the root command. The build and
	// package subcommands bind their own copies.
	cmd.Flags().StringSliceVarP(
		&r.crossCompile, "cross-compile", "x", nil,
		"Additional target systems (eg linux/arm64). Can be used multiple times.")
	cmd.Flags().BoolVar(
		&r.compressed, "compress", false,
		"Create .tgz bundles for POSIX targets and .zip for windows.")
	cmd.Flags().BoolVar(
		&r.deb, "deb", false,
		"Create .deb packages for linux targets.")
	cmd.Flags().BoolVar(
		&r.rpm, "rpm", false,
		"Create .rpm packages for linux targets.")

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if r.pipeline.ready && logutil.Level.Level() <= slog.LevelDebug {
			dumpJSON(r.pipeline.Inst)
		}
	}

	return nil
}

func (r *AllRunner) Run(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	r.build.crossCompile = append(r.build.crossCompile, r.crossCompile...)
	r.pack.crossCompile = append(r.pack.crossCompile, r.crossCompile...)
	r.pack.compressed = r.pack.compressed || r.compressed
	r.pack.deb = r.pack.deb || r.deb
	r.pack.rpm = r.pack.rpm || r.rpm

	defer r.pipeline.Inst.Durations.Steps.Stopwatch("all")()

	err = r.check.check(ctx)
	if err != nil {
		return err
	}

	err = r.build.build(ctx)
	if err != nil {
		return err
	}

	_, err = r.pack.createArtifacts(ctx)
	if err != nil {
		return err
	}

	return r.upload.upload(ctx)
}
