package project_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/gitutil"
	"github.com/pkgship/pkgship/pkg/project"
	"github.com/pkgship/pkgship/pkg/relver"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// writeProject creates a small but complete module with two main packages
// and a library package.
func writeProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/shipdemo/v2\n\ngo 1.21\n")
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, dir, "cmd/shipctl/main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, dir, "pkg/greet/greet.go", "package greet\n\n// Hello returns a greeting.\nfunc Hello() string {\n\treturn \"hello\"\n}\n")

	return dir
}

func TestCollect(t *testing.T) {
	dir := writeProject(t)

	repo, err := gitutil.Init(dir)
	require.NoError(t, err)

	_, err = repo.CommitAll("feat: initial import")
	require.NoError(t, err)
	require.NoError(t, repo.CreateTag("v0.3.0", "release v0.3.0"))

	info, err := project.Collect(context.Background(), project.Params{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "example.com/shipdemo/v2", info.Go.Module)
	assert.Equal(t, "shipdemo", info.Go.Name)
	assert.Equal(t, "1.21", info.Go.Required)
	assert.NotEmpty(t, info.Go.Version)

	assert.Equal(t, runtime.GOOS, info.System.OS)
	assert.Equal(t, runtime.GOARCH, info.System.Arch)

	assert.True(t, info.Version.IsRelease())
	assert.Equal(t, "v0.3.0", info.Version.String())

	assert.Len(t, info.Commit.Hash, 40)
	assert.Equal(t, "main", info.Commit.Branch)
	assert.Empty(t, info.Commit.DirtyFiles)

	_, err = time.Parse(time.RFC3339, info.Commit.Date)
	assert.NoError(t, err)

	assert.Equal(t, []project.PackageInfo{
		{Path: "example.com/shipdemo/v2", Name: "shipdemo"},
		{Path: "example.com/shipdemo/v2/cmd/shipctl", Name: "shipctl"},
	}, info.Packages.Main)

	assert.Equal(t, []string{
		"example.com/shipdemo/v2",
		"example.com/shipdemo/v2/cmd/shipctl",
		"example.com/shipdemo/v2/pkg/greet",
	}, info.Packages.All)

	assert.NotEmpty(t, info.Packages.Files)
}

func TestCollectDirtyTree(t *testing.T) {
	dir := writeProject(t)

	repo, err := gitutil.Init(dir)
	require.NoError(t, err)

	_, err = repo.CommitAll("feat: initial import")
	require.NoError(t, err)
	require.NoError(t, repo.CreateTag("v0.3.0", "release v0.3.0"))

	writeFile(t, dir, "pkg/greet/greet.go", "package greet\n\nfunc Hello() string {\n\treturn \"changed\"\n}\n")

	info, err := project.Collect(context.Background(), project.Params{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, relver.KindDirty, info.Version.Kind)
	assert.Equal(t, "v0.3.0+dirty", info.Version.String())
	assert.NotEmpty(t, info.Commit.DirtyFiles)
}

func TestCollectFromSubdirectory(t *testing.T) {
	dir := writeProject(t)

	info, err := project.Collect(context.Background(), project.Params{
		Dir: filepath.Join(dir, "pkg", "greet"),
	})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(info.Go.Dir)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, "example.com/shipdemo/v2", info.Go.Module)
}

func TestCollectWithoutRepository(t *testing.T) {
	dir := writeProject(t)

	info, err := project.Collect(context.Background(), project.Params{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, relver.KindNone, info.Version.Kind)
	assert.Empty(t, info.Commit.Hash)
	assert.Empty(t, info.Commit.DirtyFiles)
}

func TestCollectWithoutModule(t *testing.T) {
	_, err := project.Collect(context.Background(), project.Params{Dir: t.TempDir()})
	assert.ErrorIs(t, err, project.ErrNoModule)
}
