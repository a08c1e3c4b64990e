// Package ghutil publishes releases on GitHub: creating the release for a
// pushed tag and attaching the built artifacts.
package ghutil

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v74/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/pkgship/pkgship/pkg/logutil"
)

// Token environment variables, in lookup order. PKGSHIP_GITHUB_TOKEN wins,
// so a dedicated release token can coexist with the ambient GITHUB_TOKEN of
// CI runners.
var tokenEnvVars = []string{"PKGSHIP_GITHUB_TOKEN", "GITHUB_TOKEN"}

// TokenFromEnv returns the GitHub token from the environment. The second
// return is false, if no token is set.
func TokenFromEnv() (string, bool) {
	for _, name := range tokenEnvVars {
		token := os.Getenv(name)
		if token != "" {
			return token, true
		}
	}

	return "", false
}

// NewClient creates a GitHub API client. An empty token yields an
// unauthenticated client, which is enough for read access on public
// repositories.
func NewClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, src))
}

// ReleaseParams describe the release to create.
type ReleaseParams struct {
	Owner string
	Repo  string

	Tag        string
	Title      string
	Notes      string
	Prerelease bool

	// AssetPaths are local files that get uploaded as release assets.
	AssetPaths []string
}

// CreateRelease creates the GitHub release for an existing tag and uploads
// the assets. It fails when a release for the tag already exists, so a
// rerun cannot silently replace published artifacts.
func CreateRelease(ctx context.Context, client *github.Client, params ReleaseParams) (*github.RepositoryRelease, error) {
	log := logutil.Get(ctx)

	existing, resp, err := client.Repositories.GetReleaseByTag(ctx, params.Owner, params.Repo, params.Tag)
	if err == nil {
		return nil, errors.Errorf("release for tag %s already exists: %s",
			params.Tag, existing.GetHTMLURL())
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return nil, errors.Wrap(err, "failed to check for existing release")
	}

	release, _, err := client.Repositories.CreateRelease(ctx, params.Owner, params.Repo,
		&github.RepositoryRelease{
			TagName:    github.Ptr(params.Tag),
			Name:       github.Ptr(params.Title),
			Body:       github.Ptr(params.Notes),
			Prerelease: github.Ptr(params.Prerelease),
		})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create release for tag %s", params.Tag)
	}

	log.Info("created release", "tag", params.Tag, "url", release.GetHTMLURL())

	for _, path := range params.AssetPaths {
		log.Info("uploading release asset", "path", path)

		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		_, _, err = client.Repositories.UploadReleaseAsset(ctx, params.Owner, params.Repo,
			release.GetID(), &github.UploadOptions{
				Name: filepath.Base(path),
			}, f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to upload asset %s", path)
		}
	}

	return release, nil
}
