// Package manifest loads the project manifest `.pkgship.yaml`. The manifest
// is optional: every setting has a default, the file only overrides them and
// environment variables with the PKGSHIP_ prefix override both.
package manifest

// Filename is the name of the manifest file, looked up in the project root.
const Filename = ".pkgship.yaml"

// EnvPrefix is the prefix of environment variables that override manifest
// settings, eg PKGSHIP_RELEASE_PROXY.
const EnvPrefix = "PKGSHIP_"

type Manifest struct {
	Project ProjectConfig `koanf:"project"`
	Build   BuildConfig   `koanf:"build"`
	Checks  ChecksConfig  `koanf:"checks"`
	Docs    DocsConfig    `koanf:"docs"`
	Release ReleaseConfig `koanf:"release"`
	Tooling ToolingConfig `koanf:"tooling"`
}

// ProjectConfig describes the project for artifacts, OS packages and the
// documentation site.
type ProjectConfig struct {
	Name        string `koanf:"name"`
	Description string `koanf:"description"`
	Homepage    string `koanf:"homepage" validate:"omitempty,url"`
	License     string `koanf:"license"`
	Maintainer  string `koanf:"maintainer"`
}

type BuildConfig struct {
	// Targets are package patterns that get scanned for main packages.
	Targets []string `koanf:"targets"`

	// CrossCompile lists additional target systems in "os/arch" form.
	CrossCompile []string `koanf:"cross_compile" validate:"dive,contains=/"`

	CGO        bool `koanf:"cgo"`
	Compressed bool `koanf:"compressed"`
	DEB        bool `koanf:"deb"`
	RPM        bool `koanf:"rpm"`

	// InfoPackage overrides the package that receives the version ldflags.
	// Defaults to <module>/pkg/cmdutil.
	InfoPackage string `koanf:"info_package"`
}

type ChecksConfig struct {
	// Skip disables checks by name.
	Skip []string `koanf:"skip"`

	// Exclude removes files from checks, using doublestar glob patterns
	// relative to the project root.
	Exclude []string `koanf:"exclude"`

	// CoverMin fails the test check when the total coverage drops below
	// this percentage. Zero disables the threshold.
	CoverMin float64 `koanf:"covermin" validate:"gte=0,lte=100"`
}

type DocsConfig struct {
	Title  string `koanf:"title"`
	Listen string `koanf:"listen" validate:"omitempty,hostname_port"`
	Admin  string `koanf:"admin" validate:"omitempty,hostname_port"`
}

type ReleaseConfig struct {
	// Stable allows major bumps before v1.0.0. Without it, breaking
	// changes on a v0 project only bump the minor version.
	Stable bool `koanf:"stable"`

	Proxy string `koanf:"proxy" validate:"omitempty,url"`
	SumDB string `koanf:"sumdb" validate:"omitempty,url"`

	// S3URL is the upload location for artifacts ("s3://bucket/prefix").
	S3URL string `koanf:"s3_url"`
}

type ToolingConfig struct {
	// Go pins the toolchain version that `pkgship verify` expects, eg
	// "1.26". Empty skips the pin check.
	Go string `koanf:"go"`
}

// Default returns the manifest that applies without a manifest file.
func Default() Manifest {
	return Manifest{
		Build: BuildConfig{
			Targets: []string{"./..."},
		},
		Docs: DocsConfig{
			Listen: "localhost:8911",
			Admin:  "localhost:8912",
		},
		Release: ReleaseConfig{
			Proxy: "https://proxy.golang.org",
			SumDB: "https://sum.golang.org",
		},
	}
}
