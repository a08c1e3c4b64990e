package relver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkgship/pkgship/pkg/relver"
	"github.com/pkgship/pkgship/pkg/testutil"
)

func TestDecideBump(t *testing.T) {
	tests := []struct {
		name    string
		commits []relver.Commit
		want    relver.BumpLevel
	}{
		{
			name:    "no commits",
			commits: nil,
			want:    relver.BumpNone,
		},
		{
			name: "fix only",
			commits: []relver.Commit{
				{Hash: "a1b2c3d4e5f6", Subject: "fix: handle missing go.mod"},
			},
			want: relver.BumpPatch,
		},
		{
			name: "feature",
			commits: []relver.Commit{
				{Hash: "a1b2c3d4e5f6", Subject: "fix: handle missing go.mod"},
				{Hash: "b2c3d4e5f6a1", Subject: "feat: add zip artifacts"},
			},
			want: relver.BumpMinor,
		},
		{
			name: "breaking via exclamation mark",
			commits: []relver.Commit{
				{Hash: "a1b2c3d4e5f6", Subject: "refactor!: drop legacy manifest keys"},
			},
			want: relver.BumpMajor,
		},
		{
			name: "breaking via scope and exclamation mark",
			commits: []relver.Commit{
				{Hash: "a1b2c3d4e5f6", Subject: "feat(manifest)!: require explicit targets"},
			},
			want: relver.BumpMajor,
		},
		{
			name: "breaking via footer",
			commits: []relver.Commit{
				{
					Hash:    "a1b2c3d4e5f6",
					Subject: "feat: rework check runner",
					Body:    "BREAKING CHANGE: results are JSON now",
				},
			},
			want: relver.BumpMajor,
		},
		{
			name: "non-conventional subject counts as patch",
			commits: []relver.Commit{
				{Hash: "a1b2c3d4e5f6", Subject: "Update README"},
			},
			want: relver.BumpPatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := relver.DecideBump(tt.commits)
			assert.Equal(t, tt.want, decision.Level)

			if tt.want != relver.BumpNone {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		current string
		level   relver.BumpLevel
		stable  bool
		want    string
	}{
		{"patch", "v1.2.3", relver.BumpPatch, false, "v1.2.4"},
		{"minor", "v1.2.3", relver.BumpMinor, false, "v1.3.0"},
		{"major", "v1.2.3", relver.BumpMajor, false, "v2.0.0"},
		{"major before v1 demotes to minor", "v0.4.2", relver.BumpMajor, false, "v0.5.0"},
		{"major before v1 with stable", "v0.4.2", relver.BumpMajor, true, "v1.0.0"},
		{"minor resets patch", "v0.4.2", relver.BumpMinor, false, "v0.5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := relver.Parse(tt.current)
			assert.NoError(t, err)

			next := relver.Next(current, tt.level, tt.stable)
			assert.Equal(t, tt.want, next.String())
			assert.Equal(t, relver.KindRelease, next.Kind)
		})
	}
}

func TestNotes(t *testing.T) {
	version, err := relver.Parse("v0.4.0")
	assert.NoError(t, err)

	commits := []relver.Commit{
		{Hash: "b9e93731111", Subject: "feat(docs): add site generator"},
		{Hash: "a1b2c3d4444", Subject: "fix: handle missing go.mod"},
		{Hash: "c0ffee99999", Subject: "refactor!: drop legacy manifest keys"},
		{Hash: "deadbeef222", Subject: "Update README"},
	}

	notes := relver.Notes(version, commits)
	testutil.AssertGolden(t, "test-fixtures/notes-golden.md", []byte(notes))
}
