// Package pkgship is a release toolkit for Go modules. It scaffolds new
// projects, keeps their CI configuration generated, runs the quality gate,
// builds and packages binaries, generates a documentation site and drives
// the release workflow up to the Go module proxy.
//
// # Commands
//
// The pkgship binary is the entry point for everything:
//
//	pkgship new        scaffold a new project from a template
//	pkgship ci         write the GitHub Actions workflows
//	pkgship check      formatting, static analysis, tests and tidy check
//	pkgship fmt        rewrite files with standard formatting
//	pkgship build      compile all main packages for all target systems
//	pkgship package    bundles, OS packages and checksums
//	pkgship upload     push the dist directory to the release bucket
//	pkgship docs       build, preview or serve the documentation site
//	pkgship release    plan, tag, publish and register releases
//	pkgship verify     reproducibility and toolchain checks
//
// Running pkgship without a subcommand executes the full local pipeline:
// checks, build, package and upload.
//
// # Manifest
//
// Projects are configured through an optional .pkgship.yaml in the project
// root. Every setting has a default and environment variables with the
// PKGSHIP_ prefix override the file. See the manifest package for the
// available settings.
//
// # Versioning
//
// Versions are derived from git: the nearest reachable version tag plus the
// distance to HEAD, in the same format `git describe` prints. The release
// commands read the commit history since the last tag and derive the next
// version from conventional commit subjects, so `feat:` bumps the minor
// version and a breaking change marker bumps the major version.
//
// # Libraries
//
// The pkg directory contains the building blocks the commands are made of.
// They are usable on their own, but their API follows the needs of the
// pkgship commands first.
package pkgship
