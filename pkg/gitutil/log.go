package gitutil

import (
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/pkg/errors"
)

// Commit is a single commit from the history, split into the parts the
// release workflow cares about.
type Commit struct {
	Hash    string
	Subject string
	Body    string
	Author  string
	Date    time.Time
}

func newCommit(c *object.Commit) Commit {
	subject, body, _ := strings.Cut(c.Message, "\n")

	return Commit{
		Hash:    c.Hash.String(),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
		Author:  c.Author.Name,
		Date:    c.Author.When,
	}
}

// CommitsSince returns the commits between HEAD and the given tag, newest
// first and excluding the tagged commit itself. An empty tag name returns
// the whole history, which covers projects that never released before.
func (r *Repo) CommitsSince(tagName string) ([]Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve HEAD")
	}

	stop := ""
	if tagName != "" {
		tags, err := r.VersionTags()
		if err != nil {
			return nil, err
		}

		for _, tag := range tags {
			if tag.Name == tagName {
				stop = tag.Hash
				break
			}
		}

		if stop == "" {
			return nil, errors.Errorf("tag %s not found", tagName)
		}
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read history")
	}
	defer iter.Close()

	commits := []Commit{}
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash.String() == stop {
			return storer.ErrStop
		}

		commits = append(commits, newCommit(c))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk history")
	}

	return commits, nil
}
