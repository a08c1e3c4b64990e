package gitutil

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// Tag is a version tag together with the commit it points to. Annotated tags
// are resolved to their target commit.
type Tag struct {
	Name string
	Hash string
}

// VersionTags returns all semver tags of the repository, sorted from oldest
// to newest version. Tags that do not parse as semver are ignored.
func (r *Repo) VersionTags() ([]Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}

	tags := []Tag{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !semver.IsValid(name) {
			return nil
		}

		hash := ref.Hash()

		// Annotated tags point to a tag object, not to the commit itself.
		tagObj, err := r.repo.TagObject(hash)
		if err == nil {
			hash = tagObj.Target
		} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
			return errors.Wrapf(err, "failed to resolve tag %s", name)
		}

		tags = append(tags, Tag{Name: name, Hash: hash.String()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		return semver.Compare(tags[i].Name, tags[j].Name) < 0
	})

	return tags, nil
}

// LatestVersionTag returns the highest semver tag of the repository. The
// second return is false, if there are no version tags yet.
func (r *Repo) LatestVersionTag() (Tag, bool, error) {
	tags, err := r.VersionTags()
	if err != nil {
		return Tag{}, false, err
	}

	if len(tags) == 0 {
		return Tag{}, false, nil
	}

	return tags[len(tags)-1], true, nil
}

// Description is the structured equivalent of the output of
// `git describe --always --dirty --tags`.
type Description struct {
	Tag      string
	Distance int
	Dirty    bool
	Hash     string
}

// String renders the description in the format of the git binary, so it can
// be parsed by relver.Parse.
func (d Description) String() string {
	short := d.Hash
	if len(short) > 7 {
		short = short[:7]
	}

	s := ""
	switch {
	case d.Tag == "":
		s = short
	case d.Distance == 0:
		s = d.Tag
	default:
		s = fmt.Sprintf("%s-%d-g%s", d.Tag, d.Distance, short)
	}

	if d.Dirty {
		s += "-dirty"
	}

	return s
}

// Describe finds the nearest version tag that is reachable from HEAD,
// together with the number of commits between HEAD and the tag. Commits are
// searched breadth-first, so for histories with merges the distance is the
// length of the shortest path. Without version tags only the commit hash is
// reported.
func (r *Repo) Describe() (Description, error) {
	var desc Description

	head, err := r.repo.Head()
	if err != nil {
		return desc, errors.Wrap(err, "failed to resolve HEAD")
	}
	desc.Hash = head.Hash().String()

	dirty, err := r.DirtyFiles()
	if err != nil {
		return desc, err
	}
	desc.Dirty = len(dirty) > 0

	tags, err := r.VersionTags()
	if err != nil {
		return desc, err
	}

	// Multiple tags may point to the same commit. The highest version wins,
	// which the sorting of VersionTags guarantees.
	tagsByCommit := map[string]string{}
	for _, tag := range tags {
		tagsByCommit[tag.Hash] = tag.Name
	}

	type queueItem struct {
		hash  plumbing.Hash
		depth int
	}

	var (
		visited = map[plumbing.Hash]bool{}
		queue   = []queueItem{{hash: head.Hash(), depth: 0}}
	)

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if visited[item.hash] {
			continue
		}
		visited[item.hash] = true

		if tag, ok := tagsByCommit[item.hash.String()]; ok {
			desc.Tag = tag
			desc.Distance = item.depth
			return desc, nil
		}

		commit, err := r.repo.CommitObject(item.hash)
		if err != nil {
			return desc, errors.Wrapf(err, "failed to read commit %s", item.hash)
		}

		for _, parent := range commit.ParentHashes {
			queue = append(queue, queueItem{hash: parent, depth: item.depth + 1})
		}
	}

	return desc, nil
}
