package gitutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/gitutil"
)

func commitFile(t *testing.T, repo *gitutil.Repo, dir, name, content, message string) string {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	require.NoError(t, err)

	hash, err := repo.CommitAll(message)
	require.NoError(t, err)

	return hash
}

func TestOpenMissingRepository(t *testing.T) {
	_, err := gitutil.Open(t.TempDir())
	assert.ErrorIs(t, err, gitutil.ErrNoRepository)
}

func TestOpenFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := gitutil.Init(dir)
	require.NoError(t, err)

	commitFile(t, repo, dir, "a.txt", "one", "initial import")

	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0755))

	opened, err := gitutil.Open(sub)
	require.NoError(t, err)

	head, err := opened.Head()
	require.NoError(t, err)
	assert.NotEmpty(t, head.Hash)
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	repo, err := gitutil.Init(dir)
	require.NoError(t, err)

	hash := commitFile(t, repo, dir, "a.txt", "one", "feat: initial import")

	t.Run("without tags", func(t *testing.T) {
		desc, err := repo.Describe()
		require.NoError(t, err)
		assert.Empty(t, desc.Tag)
		assert.False(t, desc.Dirty)
		assert.Equal(t, hash[:7], desc.String())
	})

	require.NoError(t, repo.CreateTag("v0.1.0", "release v0.1.0"))

	t.Run("on tag", func(t *testing.T) {
		desc, err := repo.Describe()
		require.NoError(t, err)
		assert.Equal(t, "v0.1.0", desc.String())
	})

	commitFile(t, repo, dir, "b.txt", "two", "fix: second")
	commitFile(t, repo, dir, "c.txt", "three", "feat: third")

	t.Run("with distance", func(t *testing.T) {
		desc, err := repo.Describe()
		require.NoError(t, err)
		assert.Equal(t, "v0.1.0", desc.Tag)
		assert.Equal(t, 2, desc.Distance)
		assert.True(t, strings.HasPrefix(desc.String(), "v0.1.0-2-g"))
	})

	t.Run("dirty", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("changed"), 0644))

		desc, err := repo.Describe()
		require.NoError(t, err)
		assert.True(t, desc.Dirty)
		assert.True(t, strings.HasSuffix(desc.String(), "-dirty"))

		files, err := repo.DirtyFiles()
		require.NoError(t, err)
		assert.Len(t, files, 1)
		assert.Contains(t, files[0], "c.txt")
	})
}

func TestVersionTags(t *testing.T) {
	dir := t.TempDir()
	repo, err := gitutil.Init(dir)
	require.NoError(t, err)

	commitFile(t, repo, dir, "a.txt", "one", "initial import")
	require.NoError(t, repo.CreateTag("v0.1.0", "release v0.1.0"))

	commitFile(t, repo, dir, "b.txt", "two", "more work")
	require.NoError(t, repo.CreateTag("v0.2.0", "release v0.2.0"))
	require.NoError(t, repo.CreateTag("v0.1.1", "backport"))
	require.NoError(t, repo.CreateTag("not-a-version", "notes"))

	tags, err := repo.VersionTags()
	require.NoError(t, err)

	names := []string{}
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"v0.1.0", "v0.1.1", "v0.2.0"}, names)

	latest, ok, err := repo.LatestVersionTag()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v0.2.0", latest.Name)
}

func TestCommitsSince(t *testing.T) {
	dir := t.TempDir()
	repo, err := gitutil.Init(dir)
	require.NoError(t, err)

	commitFile(t, repo, dir, "a.txt", "one", "feat: initial import")
	require.NoError(t, repo.CreateTag("v0.1.0", "release v0.1.0"))

	commitFile(t, repo, dir, "b.txt", "two", "fix: second")
	commitFile(t, repo, dir, "c.txt", "three", "feat: third\n\nwith a body")

	commits, err := repo.CommitsSince("v0.1.0")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "feat: third", commits[0].Subject)
	assert.Equal(t, "with a body", commits[0].Body)
	assert.Equal(t, "fix: second", commits[1].Subject)
	assert.Empty(t, commits[1].Body)

	all, err := repo.CommitsSince("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.CommitsSince("v9.9.9")
	assert.Error(t, err)
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    gitutil.RemoteInfo
		wantErr bool
	}{
		{
			name: "https",
			in:   "https://github.com/pkgship/pkgship.git",
			want: gitutil.RemoteInfo{Host: "github.com", Owner: "pkgship", Name: "pkgship"},
		},
		{
			name: "https without suffix",
			in:   "https://github.com/pkgship/pkgship",
			want: gitutil.RemoteInfo{Host: "github.com", Owner: "pkgship", Name: "pkgship"},
		},
		{
			name: "scp-like",
			in:   "git@github.com:octo/tools.git",
			want: gitutil.RemoteInfo{Host: "github.com", Owner: "octo", Name: "tools"},
		},
		{
			name: "ssh",
			in:   "ssh://git@github.com/octo/tools.git",
			want: gitutil.RemoteInfo{Host: "github.com", Owner: "octo", Name: "tools"},
		},
		{
			name: "nested groups",
			in:   "https://gitlab.example.com/group/subgroup/repo.git",
			want: gitutil.RemoteInfo{Host: "gitlab.example.com", Owner: "subgroup", Name: "repo"},
		},
		{
			name:    "garbage",
			in:      "not-a-remote",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gitutil.ParseRemoteURL(tt.in)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
