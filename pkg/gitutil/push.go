package gitutil

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"
)

// CreateTag creates an annotated tag on the current HEAD.
func (r *Repo) CreateTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return errors.Wrap(err, "failed to resolve HEAD")
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: message,
		Tagger:  r.signature(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create tag %s", name)
	}

	return nil
}

// PushTag pushes a single tag to the origin remote. The token is used as
// basic auth password for HTTPS remotes; with an empty token the transport
// falls back to the ambient authentication, eg an SSH agent.
func (r *Repo) PushTag(ctx context.Context, name, token string) error {
	refspec := config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", name, name))

	opts := &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refspec},
	}

	if token != "" {
		opts.Auth = &http.BasicAuth{
			// The username is irrelevant for token auth, but must not be
			// empty.
			Username: "git",
			Password: token,
		}
	}

	err := r.repo.PushContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to push tag %s", name)
	}

	return nil
}
