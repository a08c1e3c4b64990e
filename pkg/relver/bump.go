package relver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type BumpLevel int

const (
	BumpNone BumpLevel = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

func (l BumpLevel) String() string {
	switch l {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return "none"
	}
}

// Commit is the slice of a git commit that is relevant for deciding the next
// version and for rendering release notes.
type Commit struct {
	Hash    string
	Subject string
	Body    string
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

var reConventional = regexp.MustCompile(`^(\w+)(\([^)]*\))?(!)?:\s*(.+)$`)

// conventional splits a commit subject into its conventional commit parts.
// The ok return is false for subjects that do not follow the convention.
func conventional(subject string) (ctype string, breaking bool, desc string, ok bool) {
	m := reConventional.FindStringSubmatch(subject)
	if m == nil {
		return "", false, subject, false
	}
	return m[1], m[3] == "!", m[4], true
}

func isBreaking(c Commit) bool {
	_, breaking, _, ok := conventional(c.Subject)
	if ok && breaking {
		return true
	}

	return strings.Contains(c.Body, "BREAKING CHANGE") ||
		strings.Contains(c.Body, "BREAKING-CHANGE")
}

// Decision is the outcome of scanning the commits since the last release. It
// carries the commit that forced the level, so the user can see why a release
// turns out bigger than expected.
type Decision struct {
	Level  BumpLevel
	Reason string
}

// DecideBump scans the given commits and returns the highest bump level any
// of them asks for. Commits without a conventional subject count as patch
// level, so a release never silently skips them.
func DecideBump(commits []Commit) Decision {
	decision := Decision{Level: BumpNone}

	for _, c := range commits {
		level := BumpPatch

		ctype, _, _, ok := conventional(c.Subject)
		if ok && ctype == "feat" {
			level = BumpMinor
		}
		if isBreaking(c) {
			level = BumpMajor
		}

		if level > decision.Level {
			decision.Level = level
			decision.Reason = fmt.Sprintf("%s %s", c.ShortHash(), c.Subject)
		}
	}

	return decision
}

// Next calculates the version that the given bump level produces. Before
// v1.0.0 a major bump only increments the minor version, unless stable is
// set, since pre-v1 breaking changes are expected and should not force the
// project into the v1 compatibility promise.
func Next(current Version, level BumpLevel, stable bool) Version {
	sv := semver.New(
		uint64(current.Major), uint64(current.Minor), uint64(current.Patch),
		"", "")

	if current.Major == 0 && level == BumpMajor && !stable {
		level = BumpMinor
	}

	var next semver.Version
	switch level {
	case BumpMajor:
		next = sv.IncMajor()
	case BumpMinor:
		next = sv.IncMinor()
	default:
		next = sv.IncPatch()
	}

	return Version{
		Major: int(next.Major()),
		Minor: int(next.Minor()),
		Patch: int(next.Patch()),
		Kind:  KindRelease,
	}
}
