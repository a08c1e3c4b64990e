package relver

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Version kinds, ordered from most to least trustworthy. Only a release
// should ever get tagged, published or registered.
const (
	KindRelease    = "release"
	KindPrerelease = "prerelease"
	KindSnapshot   = "snapshot"
	KindDirty      = "dirty"
	KindUnknown    = "unknown"
	KindNone       = "none"
)

// Version is the project version as derived from `git describe`. Kind
// classifies how far the working tree is away from a proper release and
// Suffix carries the distance and commit information for non-releases.
type Version struct {
	Major, Minor, Patch int

	Kind   string
	Suffix string
}

var (
	reCore       = regexp.MustCompile(`^v?([0-9]+)\.([0-9]+)\.([0-9]+)([\-\+].+)?$`)
	rePreRelease = regexp.MustCompile(`^[\-\+](alpha|beta|rc)\.?[0-9]+$`)
	reDescribe   = regexp.MustCompile(`\-([0-9]+)-g?([0-9a-f]+)(-dirty)?$`)
)

// Parse interprets the output of `git describe --always --dirty --tags`. It
// never fails on unexpected input, but classifies it as KindUnknown instead,
// so builds from odd working trees still get a usable version string.
func Parse(s string) (Version, error) {
	var (
		v   Version
		err error
	)

	if s == "" {
		return Version{Kind: KindNone}, nil
	}

	matchGroup := reCore.FindStringSubmatch(s)
	if matchGroup == nil {
		return Version{Kind: KindUnknown, Suffix: s}, nil
	}

	var (
		mMajor  = matchGroup[1]
		mMinor  = matchGroup[2]
		mPatch  = matchGroup[3]
		mSuffix = matchGroup[4]
	)

	v.Major, err = strconv.Atoi(mMajor)
	if err != nil {
		// Should not happen because of the regex.
		panic(err)
	}

	v.Minor, err = strconv.Atoi(mMinor)
	if err != nil {
		// Should not happen because of the regex.
		panic(err)
	}

	v.Patch, err = strconv.Atoi(mPatch)
	if err != nil {
		// Should not happen because of the regex.
		panic(err)
	}

	if mSuffix == "" {
		v.Kind = KindRelease
		return v, nil
	}

	if rePreRelease.MatchString(mSuffix) {
		v.Kind = KindPrerelease
		v.Suffix = mSuffix[1:]
		return v, nil
	}

	matchGroupDescribe := reDescribe.FindStringSubmatch(mSuffix)
	if matchGroupDescribe != nil {
		var (
			mDistance = matchGroupDescribe[1]
			mCommit   = matchGroupDescribe[2]
			mDirty    = matchGroupDescribe[3]
		)

		v.Suffix = fmt.Sprintf("%s.%s", mDistance, mCommit)
		v.Kind = KindSnapshot
		if mDirty != "" {
			v.Kind = KindDirty
		}

		return v, nil
	}

	if mSuffix == "-dirty" {
		v.Kind = KindDirty
		return v, nil
	}

	v.Kind = KindUnknown
	return v, nil
}

// IsRelease reports whether the version points exactly at a release tag.
func (v Version) IsRelease() bool {
	return v.Kind == KindRelease
}

func (v Version) String() string {
	s, r := v.StringRelease()

	if r == "" {
		return s
	}

	return fmt.Sprintf("%s+%s", s, r)
}

// StringRelease returns the plain core version and the release qualifier
// separately, so callers can use the core version for filenames that must
// not contain a `+`.
func (v Version) StringRelease() (string, string) {
	version := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)

	release := v.Suffix
	switch v.Kind {
	case KindRelease, KindPrerelease, KindNone, "":
		// The kind is either obvious from the version itself or there is
		// nothing useful to add.
	default:
		if release == "" {
			release = v.Kind
		} else {
			release = fmt.Sprintf("%s.%s", v.Kind, release)
		}
	}

	return version, release
}

func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}
