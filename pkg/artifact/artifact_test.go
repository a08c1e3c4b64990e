package artifact

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/project"
	"github.com/pkgship/pkgship/pkg/relver"
)

func testInfo() *project.Info {
	info := &project.Info{}
	info.Go.Name = "demo"
	info.Go.Module = "example.com/demo"
	info.System = project.SystemInfo{OS: "linux", Arch: "amd64"}
	info.Version = relver.Version{Major: 1, Minor: 2, Patch: 3, Kind: relver.KindRelease}
	info.Packages.Main = []project.PackageInfo{
		{Path: "example.com/demo", Name: "demo"},
		{Path: "example.com/demo/cmd/helper", Name: "helper"},
	}
	return info
}

func filenames(artifacts []Artifact) []string {
	names := []string{}
	for _, a := range artifacts {
		names = append(names, a.Filename)
	}
	return names
}

func TestPlan(t *testing.T) {
	info := testInfo()

	systems := []project.SystemInfo{
		{OS: "linux", Arch: "amd64"},
		{OS: "windows", Arch: "amd64", Ext: ".exe"},
	}

	t.Run("binaries only", func(t *testing.T) {
		artifacts := Plan(info, systems, Params{})

		assert.Equal(t, []string{
			"demo-v1.2.3-linux-amd64",
			"helper-v1.2.3-linux-amd64",
			"demo-v1.2.3-windows-amd64.exe",
			"helper-v1.2.3-windows-amd64.exe",
		}, filenames(artifacts))

		// Host system binaries get plain-name aliases.
		assert.Equal(t, []string{"demo"}, artifacts[0].Aliases)
		assert.Empty(t, artifacts[2].Aliases)
	})

	t.Run("compressed", func(t *testing.T) {
		artifacts := Plan(info, systems, Params{Compressed: true})

		names := filenames(artifacts)
		assert.Contains(t, names, "demo-v1.2.3-linux-amd64.tgz")
		assert.Contains(t, names, "demo-v1.2.3-windows-amd64.zip")
		assert.NotContains(t, names, "demo-v1.2.3-windows-amd64.tgz")
	})

	t.Run("os packages", func(t *testing.T) {
		artifacts := Plan(info, systems, Params{DEB: true, RPM: true})

		names := filenames(artifacts)
		assert.Contains(t, names, "demo-v1.2.3-amd64.deb")
		assert.Contains(t, names, "demo-v1.2.3-amd64.rpm")

		// No OS packages for windows.
		for _, name := range names {
			assert.False(t, strings.Contains(name, "windows") && strings.HasSuffix(name, ".deb"))
		}
	})
}

func TestPlanSnapshotVersion(t *testing.T) {
	info := testInfo()
	info.Version = relver.Version{
		Major: 1, Minor: 2, Patch: 3,
		Kind:   relver.KindSnapshot,
		Suffix: "4.deadbee",
	}

	artifacts := Plan(info, []project.SystemInfo{info.System}, Params{})

	// The filename carries the plain core version; the snapshot qualifier
	// would produce `+` characters that break URLs and shells.
	assert.Equal(t, "demo-v1.2.3-linux-amd64", artifacts[0].Filename)
}

func writeBinary(t *testing.T, distDir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(distDir, name), []byte("#!/bin/true\n"), 0755))
}

func TestCreateTGZ(t *testing.T) {
	dist := t.TempDir()
	writeBinary(t, dist, "demo-v1.2.3-linux-amd64")
	writeBinary(t, dist, "helper-v1.2.3-linux-amd64")

	a := Artifact{
		Filename: "demo-v1.2.3-linux-amd64.tgz",
		Kind:     KindTGZ,
		System:   project.SystemInfo{OS: "linux", Arch: "amd64"},
		Binaries: map[string]string{
			"demo":   "demo-v1.2.3-linux-amd64",
			"helper": "helper-v1.2.3-linux-amd64",
		},
	}

	require.NoError(t, Create(dist, a, Meta{}))

	f, err := os.Open(filepath.Join(dist, a.Filename))
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	entries := map[string]int64{}
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		entries[hdr.Name] = hdr.Mode
	}

	assert.Equal(t, map[string]int64{"demo": 0755, "helper": 0755}, entries)
}

func TestCreateZip(t *testing.T) {
	dist := t.TempDir()
	writeBinary(t, dist, "demo-v1.2.3-windows-amd64.exe")

	a := Artifact{
		Filename: "demo-v1.2.3-windows-amd64.zip",
		Kind:     KindZip,
		System:   project.SystemInfo{OS: "windows", Arch: "amd64", Ext: ".exe"},
		Binaries: map[string]string{
			"demo.exe": "demo-v1.2.3-windows-amd64.exe",
		},
	}

	require.NoError(t, Create(dist, a, Meta{}))

	zr, err := zip.OpenReader(filepath.Join(dist, a.Filename))
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 1)
	assert.Equal(t, "demo.exe", zr.File[0].Name)
}

func TestCreateAliases(t *testing.T) {
	dist := t.TempDir()
	writeBinary(t, dist, "demo-v1.2.3-linux-amd64")

	a := Artifact{
		Filename: "demo-v1.2.3-linux-amd64",
		Kind:     KindBinary,
		System:   project.SystemInfo{OS: "linux", Arch: "amd64"},
		Aliases:  []string{"demo"},
	}

	require.NoError(t, Create(dist, a, Meta{}))

	target, err := os.Readlink(filepath.Join(dist, "demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo-v1.2.3-linux-amd64", target)

	// Recreating refreshes the symlink instead of failing.
	require.NoError(t, Create(dist, a, Meta{}))
}

func TestWriteChecksums(t *testing.T) {
	dist := t.TempDir()
	writeBinary(t, dist, "demo-v1.2.3-linux-amd64")

	artifacts := []Artifact{{Filename: "demo-v1.2.3-linux-amd64", Kind: KindBinary}}

	filename, err := WriteChecksums(dist, "demo-v1.2.3", artifacts)
	require.NoError(t, err)
	assert.Equal(t, "demo-v1.2.3.sha256", filename)

	data, err := os.ReadFile(filepath.Join(dist, filename))
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	parts := strings.Fields(line)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 64)
	assert.Equal(t, "demo-v1.2.3-linux-amd64", parts[1])
}

func TestLockDist(t *testing.T) {
	dist := filepath.Join(t.TempDir(), "dist")

	release, err := LockDist(dist)
	require.NoError(t, err)
	release()

	_, err = os.Stat(filepath.Join(dist, ".lock"))
	assert.NoError(t, err)
}

func TestArtifactLogFields(t *testing.T) {
	a := Artifact{
		Filename: "demo-v1.2.3-linux-amd64.tgz",
		Kind:     KindTGZ,
		System:   project.SystemInfo{OS: "linux", Arch: "amd64"},
		Binaries: map[string]string{"demo": "demo-v1.2.3-linux-amd64"},
	}

	assert.Equal(t, map[string]any{
		"filename": "demo-v1.2.3-linux-amd64.tgz",
		"kind":     "tgz",
	}, logutil.FromStruct(a))
}
