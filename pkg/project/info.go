// Package project collects the facts about a Go project that the pipeline
// steps work with: module identity, toolchain and host system, git state and
// the version derived from it, and the lists of buildable packages.
package project

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/pkgship/pkgship/pkg/relver"
)

// SystemInfo identifies a target platform.
type SystemInfo struct {
	OS   string
	Arch string
	Ext  string `json:",omitempty"`
}

// ParseSystem parses an os/arch pair like `linux/amd64`. Windows targets get
// the `.exe` extension attached.
func ParseSystem(target string) (SystemInfo, error) {
	parts := strings.Split(target, "/")
	if len(parts) != 2 {
		return SystemInfo{}, errors.Errorf("invalid cross compile target %q, want os/arch", target)
	}

	info := SystemInfo{
		OS:   parts[0],
		Arch: parts[1],
	}
	if info.OS == "windows" {
		info.Ext = ".exe"
	}

	return info, nil
}

// Name returns the os/arch notation of the system.
func (i SystemInfo) Name() string {
	return fmt.Sprintf("%s/%s", i.OS, i.Arch)
}

// FileSuffix returns the part of artifact file names that identifies the
// system, eg `linux-amd64` or `windows-amd64.exe`.
func (i SystemInfo) FileSuffix() string {
	return fmt.Sprintf("%s-%s%s", i.OS, i.Arch, i.Ext)
}

// GoInfo describes the Go module of the project.
type GoInfo struct {
	Name    string
	Module  string
	Dir     string
	Version string

	// Required is the version from the go directive in go.mod, while Version
	// is the toolchain that collected this info.
	Required string `json:",omitempty"`
}

// CommitInfo describes the state of the git checkout. All fields are empty,
// if the project is not inside a git repository.
type CommitInfo struct {
	Hash       string   `json:",omitempty"`
	Branch     string   `json:",omitempty"`
	Date       string   `json:",omitempty"`
	DirtyFiles []string `json:",omitempty"`
}

// PackageInfo is a buildable main package of the project. Name is the base
// name used for binaries and artifacts.
type PackageInfo struct {
	Path string
	Name string
}

// Packages lists the Go packages of the project.
type Packages struct {
	All   []string
	Main  []PackageInfo
	Files []string
}

// Info is everything the pipeline steps need to know about the project. It
// gets collected once per invocation and is passed around read-only.
type Info struct {
	BuildDate string
	System    SystemInfo
	Version   relver.Version

	Go       GoInfo
	Commit   CommitInfo
	Packages Packages
}

var reModuleName = regexp.MustCompile(`([^/]+)(/v\d+)?$`)

// ModuleName derives the project name from a module path by taking the last
// path element and stripping the major version suffix, so both
// `example.com/tool` and `example.com/tool/v3` yield `tool`.
func ModuleName(modulePath string) string {
	match := reModuleName.FindStringSubmatch(modulePath)
	if match == nil {
		return path.Base(modulePath)
	}

	return match[1]
}
