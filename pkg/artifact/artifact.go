// Package artifact plans and creates the distributable files of a release:
// raw binaries, tgz and zip bundles, deb and rpm packages and the checksum
// file that accompanies them.
package artifact

import (
	"fmt"

	"github.com/pkgship/pkgship/pkg/project"
)

// Kinds of artifacts. Binary artifacts are the build outputs themselves;
// everything else is derived from them.
const (
	KindBinary = "binary"
	KindTGZ    = "tgz"
	KindZip    = "zip"
	KindDEB    = "deb"
	KindRPM    = "rpm"
)

// Artifact is a single file in the dist directory.
type Artifact struct {
	Filename string             `logfield:"filename"`
	Kind     string             `logfield:"kind"`
	System   project.SystemInfo `logfield:"-"`

	// Binaries maps the published binary name to its filename in the dist
	// directory. Bundles contain all of them, binary artifacts exactly one.
	Binaries map[string]string `json:",omitempty" logfield:"-"`

	// Aliases are symlinks pointing to the artifact, eg the plain binary
	// name for the host system.
	Aliases []string `json:",omitempty" logfield:"-"`
}

// Meta describes the project for OS packages. It comes from the manifest.
type Meta struct {
	Name        string
	Version     string
	Release     string
	Description string
	Homepage    string
	License     string
	Maintainer  string
}

// Params control which artifact kinds the plan contains.
type Params struct {
	Compressed bool
	DEB        bool
	RPM        bool
}

// BinaryFilename is the file name of a built binary in the dist directory.
func BinaryFilename(name, version string, sys project.SystemInfo) string {
	return fmt.Sprintf("%s-%s-%s", name, version, sys.FileSuffix())
}

// Plan derives the artifact list from the build targets. Every main package
// gets a binary artifact per system; with Compressed each system
// additionally gets one bundle (tgz for POSIX, zip for windows) containing
// all binaries, and linux systems get deb/rpm packages when enabled.
func Plan(info *project.Info, systems []project.SystemInfo, params Params) []Artifact {
	version, _ := info.Version.StringRelease()

	artifacts := []Artifact{}

	for _, sys := range systems {
		binaries := map[string]string{}

		for _, pkg := range info.Packages.Main {
			filename := BinaryFilename(pkg.Name, version, sys)
			binaries[pkg.Name+sys.Ext] = filename

			binary := Artifact{
				Filename: filename,
				Kind:     KindBinary,
				System:   sys,
				Binaries: map[string]string{pkg.Name + sys.Ext: filename},
			}

			// The host system gets the convenience symlink without version
			// and system suffix, so `dist/<name>` always points to a
			// runnable binary.
			if sys.OS == info.System.OS && sys.Arch == info.System.Arch {
				binary.Aliases = append(binary.Aliases, pkg.Name+sys.Ext)
			}

			artifacts = append(artifacts, binary)
		}

		if len(binaries) == 0 {
			continue
		}

		if params.Compressed {
			kind, ext := KindTGZ, "tgz"
			if sys.OS == "windows" {
				kind, ext = KindZip, "zip"
			}

			artifacts = append(artifacts, Artifact{
				Filename: fmt.Sprintf("%s-%s-%s-%s.%s",
					info.Go.Name, version, sys.OS, sys.Arch, ext),
				Kind:     kind,
				System:   sys,
				Binaries: binaries,
			})
		}

		if sys.OS == "linux" && params.DEB {
			artifacts = append(artifacts, Artifact{
				Filename: fmt.Sprintf("%s-%s-%s.deb", info.Go.Name, version, sys.Arch),
				Kind:     KindDEB,
				System:   sys,
				Binaries: binaries,
			})
		}

		if sys.OS == "linux" && params.RPM {
			artifacts = append(artifacts, Artifact{
				Filename: fmt.Sprintf("%s-%s-%s.rpm", info.Go.Name, version, sys.Arch),
				Kind:     KindRPM,
				System:   sys,
				Binaries: binaries,
			})
		}
	}

	return artifacts
}
