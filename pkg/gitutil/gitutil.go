// Package gitutil wraps the go-git operations that the release workflow
// needs: inspecting the working tree, finding and creating version tags and
// pushing them to the origin remote. It works without a git binary, so the
// same code path runs on developer machines and inside minimal CI images.
package gitutil

import (
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
)

// ErrNoRepository gets returned by Open, if the directory is not part of a
// git repository. Callers are expected to degrade gracefully, since freshly
// scaffolded projects might not be committed yet.
var ErrNoRepository = errors.New("directory is not part of a git repository")

// Repo is a handle to a local git repository.
type Repo struct {
	repo *git.Repository
}

// Open finds the repository that contains the given directory. It searches
// upwards like the git binary does.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNoRepository
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open repository")
	}

	return &Repo{repo: repo}, nil
}

// Init creates a new repository in the given directory. The default branch
// is main, matching what the generated CI workflows trigger on.
func Init(dir string) (*Repo, error) {
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.Main,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init repository")
	}

	return &Repo{repo: repo}, nil
}

// HeadInfo describes the current HEAD commit.
type HeadInfo struct {
	Hash   string
	Branch string
	Date   time.Time
}

// Head returns hash, branch and commit date of the current HEAD.
func (r *Repo) Head() (HeadInfo, error) {
	var info HeadInfo

	ref, err := r.repo.Head()
	if err != nil {
		return info, errors.Wrap(err, "failed to resolve HEAD")
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return info, errors.Wrap(err, "failed to read HEAD commit")
	}

	info.Hash = ref.Hash().String()
	info.Branch = ref.Name().Short()
	info.Date = commit.Committer.When

	return info, nil
}

// DirtyFiles returns all files that differ from HEAD, in the short format of
// `git status -s`. An empty result means the working tree is clean.
func (r *Repo) DirtyFiles() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read worktree status")
	}

	files := []string{}
	for path, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		files = append(files, string(fs.Staging)+string(fs.Worktree)+" "+path)
	}

	return files, nil
}

// CommitAll stages every change in the worktree and commits it. It is used
// by the scaffolder for the initial commit of a new project.
func (r *Repo) CommitAll(message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "failed to open worktree")
	}

	err = wt.AddWithOptions(&git.AddOptions{All: true})
	if err != nil {
		return "", errors.Wrap(err, "failed to stage changes")
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to commit")
	}

	return hash.String(), nil
}

// signature builds the author signature from the git config and falls back
// to a generic one, so commits and tags work in unconfigured environments
// like CI.
func (r *Repo) signature() *object.Signature {
	sig := &object.Signature{
		Name:  "pkgship",
		Email: "pkgship@localhost",
		When:  time.Now(),
	}

	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}

	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}

	return sig
}
