package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/ghutil"
	"github.com/pkgship/pkgship/pkg/gitutil"
	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/registry"
	"github.com/pkgship/pkgship/pkg/relver"
)

// ReleaseRunner drives the release workflow: deciding the next version from
// the commit history, tagging, publishing the GitHub release and waiting
// for the module proxy to pick the version up.
type ReleaseRunner struct {
	pipeline *Pipeline

	version  string
	ciOutput bool
	push     bool
	timeout  time.Duration
}

func (r *ReleaseRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVar(
		&r.version, "version", "",
		"Version to release. Default is derived from the commits since the last tag.")
	cmd.PersistentFlags().BoolVar(
		&r.ciOutput, "ci-output", false,
		"Print the plan as `version=vX.Y.Z` for GitHub Actions outputs.")
	cmd.PersistentFlags().BoolVar(
		&r.push, "push", false,
		"Push the created tag to the origin remote.")
	cmd.PersistentFlags().DurationVar(
		&r.timeout, "timeout", 10*time.Minute,
		"How long `release register` waits for the module proxy.")

	return nil
}

// Run without a subcommand prints the plan.
func (r *ReleaseRunner) Run(ctx context.Context, args []string) error {
	return r.RunPlan(ctx, args)
}

// plan computes the next version and the commits it covers.
type releasePlan struct {
	Current  string `json:",omitempty"`
	Next     string
	Level    string
	Reason   string `json:",omitempty"`
	Commits  int
	LastTag  string `json:",omitempty"`
	Prepared bool   `json:"-"`

	commits []relver.Commit
	repo    *gitutil.Repo
}

func (r *ReleaseRunner) plan(ctx context.Context) (*releasePlan, error) {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return nil, err
	}

	repo, err := gitutil.Open(r.pipeline.Info.Go.Dir)
	if err != nil {
		return nil, err
	}

	plan := &releasePlan{repo: repo}

	var current relver.Version
	last, ok, err := repo.LatestVersionTag()
	if err != nil {
		return nil, err
	}
	if ok {
		plan.LastTag = last.Name
		plan.Current = last.Name

		current, err = relver.Parse(last.Name)
		if err != nil {
			return nil, err
		}
	}

	gitCommits, err := repo.CommitsSince(plan.LastTag)
	if err != nil {
		return nil, err
	}

	for _, c := range gitCommits {
		plan.commits = append(plan.commits, relver.Commit{
			Hash:    c.Hash,
			Subject: c.Subject,
			Body:    c.Body,
		})
	}
	plan.Commits = len(plan.commits)

	if r.version != "" {
		next, err := relver.Parse(r.version)
		if err != nil {
			return nil, err
		}
		if !next.IsRelease() {
			return nil, errors.Errorf("%q is not a release version", r.version)
		}

		plan.Next = fmt.Sprintf("v%d.%d.%d", next.Major, next.Minor, next.Patch)
		plan.Level = "manual"
		plan.Prepared = true
		return plan, nil
	}

	decision := relver.DecideBump(plan.commits)
	if decision.Level == relver.BumpNone {
		return plan, nil
	}

	next := relver.Next(current, decision.Level, r.pipeline.Manifest.Release.Stable)

	plan.Next = next.String()
	plan.Level = decision.Level.String()
	plan.Reason = decision.Reason
	plan.Prepared = true

	return plan, nil
}

func (r *ReleaseRunner) RunPlan(ctx context.Context, args []string) error {
	plan, err := r.plan(ctx)
	if err != nil {
		return err
	}

	if !plan.Prepared {
		logutil.Get(ctx).Info("nothing to release", "last_tag", plan.LastTag)
		if r.ciOutput {
			fmt.Println("version=")
		}
		return nil
	}

	if r.ciOutput {
		fmt.Printf("version=%s\n", plan.Next)
		return nil
	}

	return dumpJSON(plan)
}

func (r *ReleaseRunner) RunNotes(ctx context.Context, args []string) error {
	plan, err := r.plan(ctx)
	if err != nil {
		return err
	}

	if !plan.Prepared {
		return errors.New("nothing to release")
	}

	next, err := relver.Parse(plan.Next)
	if err != nil {
		return err
	}

	fmt.Print(relver.Notes(next, plan.commits))
	return nil
}

func (r *ReleaseRunner) RunTag(ctx context.Context, args []string) error {
	plan, err := r.plan(ctx)
	if err != nil {
		return err
	}

	if !plan.Prepared {
		return errors.New("nothing to release")
	}

	err = r.pipeline.requireCleanRepo()
	if err != nil {
		return err
	}

	next, err := relver.Parse(plan.Next)
	if err != nil {
		return err
	}

	notes := relver.Notes(next, plan.commits)

	err = plan.repo.CreateTag(plan.Next, notes)
	if err != nil {
		return err
	}

	log := logutil.Get(ctx)
	log.Info("created tag", "tag", plan.Next)

	if r.push {
		token, _ := ghutil.TokenFromEnv()

		err = plan.repo.PushTag(ctx, plan.Next, token)
		if err != nil {
			return err
		}

		log.Info("pushed tag", "tag", plan.Next)
	}

	return nil
}

// releaseVersion is the version the publish and register commands operate
// on: the --version flag or, when HEAD sits exactly on a release tag, that
// tag.
func (r *ReleaseRunner) releaseVersion() (string, error) {
	if r.version != "" {
		return r.version, nil
	}

	v := r.pipeline.Info.Version
	if !v.IsRelease() {
		return "", errors.Errorf(
			"HEAD is not on a release tag (version is %s), pass --version explicitly", v)
	}

	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch), nil
}

func (r *ReleaseRunner) RunPublish(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	version, err := r.releaseVersion()
	if err != nil {
		return err
	}

	repo, err := gitutil.Open(r.pipeline.Info.Go.Dir)
	if err != nil {
		return err
	}

	// The tag must exist before publishing, so the release always points at
	// a reachable commit.
	tags, err := repo.VersionTags()
	if err != nil {
		return err
	}

	previous := ""
	found := false
	for _, tag := range tags {
		if tag.Name == version {
			found = true
			break
		}
		previous = tag.Name
	}
	if !found {
		return errors.Errorf("tag %s does not exist, run `pkgship release tag` first", version)
	}

	commits, err := repo.CommitsSince(previous)
	if err != nil {
		return err
	}

	relCommits := make([]relver.Commit, 0, len(commits))
	for _, c := range commits {
		relCommits = append(relCommits, relver.Commit{
			Hash:    c.Hash,
			Subject: c.Subject,
			Body:    c.Body,
		})
	}

	next, err := relver.Parse(version)
	if err != nil {
		return err
	}

	remote, err := repo.Remote()
	if err != nil {
		return err
	}

	token, ok := ghutil.TokenFromEnv()
	if !ok {
		return errors.New("no GitHub token found, set PKGSHIP_GITHUB_TOKEN or GITHUB_TOKEN")
	}

	assets, err := filepath.Glob(r.pipeline.dist("*" + version + "*"))
	if err != nil {
		return errors.WithStack(err)
	}

	checksums := r.pipeline.dist(r.pipeline.name() + ".sha256")
	if _, err := os.Stat(checksums); err == nil {
		assets = append(assets, checksums)
	}

	client := ghutil.NewClient(ctx, token)

	release, err := ghutil.CreateRelease(ctx, client, ghutil.ReleaseParams{
		Owner:      remote.Owner,
		Repo:       remote.Name,
		Tag:        version,
		Title:      version,
		Notes:      relver.Notes(next, relCommits),
		Prerelease: next.Kind == relver.KindPrerelease,
		AssetPaths: assets,
	})
	if err != nil {
		return err
	}

	fmt.Println(release.GetHTMLURL())
	return nil
}

func (r *ReleaseRunner) RunRegister(ctx context.Context, args []string) error {
	err := r.pipeline.Setup(ctx)
	if err != nil {
		return err
	}

	version, err := r.releaseVersion()
	if err != nil {
		return err
	}

	client := registry.New(
		r.pipeline.Manifest.Release.Proxy,
		r.pipeline.Manifest.Release.SumDB)

	waitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	log := logutil.Get(ctx)
	log.Info("asking the module proxy for the version",
		"module", r.pipeline.Info.Go.Module,
		"version", version)

	info, err := client.WaitRegistered(waitCtx, r.pipeline.Info.Go.Module, version)
	if err != nil {
		return err
	}

	log.Info("version is registered",
		"version", info.Version,
		"time", info.Time.Format(time.RFC3339))

	lines, err := client.Checksum(ctx, r.pipeline.Info.Go.Module, version)
	if err != nil {
		log.Warn("checksum database does not serve the version yet",
			"error", err.Error())
	} else {
		for _, line := range lines {
			fmt.Println(line)
		}
	}

	fmt.Println(registry.DocURL(r.pipeline.Info.Go.Module, version))
	return nil
}
