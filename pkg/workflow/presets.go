package workflow

import (
	"github.com/pkg/errors"
)

// pkgshipRun invokes the pipeline through the module-pinned tool dependency,
// so CI always runs the version from go.mod.
const pkgshipRun = "go run github.com/pkgship/pkgship/cmd/pkgship"

// Params customize the generated workflows. The zero value produces
// workflows for a project on a `main` branch that tests against the two
// most recent Go releases on Linux.
type Params struct {
	GoVersions []string
	Platforms  []string
	Branch     string
}

func (p Params) withDefaults() Params {
	if len(p.GoVersions) == 0 {
		p.GoVersions = []string{"stable", "oldstable"}
	}
	if len(p.Platforms) == 0 {
		p.Platforms = []string{"ubuntu-latest"}
	}
	if p.Branch == "" {
		p.Branch = "main"
	}
	return p
}

// Presets names all built-in workflows in the order they get written.
var Presets = []string{"test", "lint", "release", "docs"}

// Preset returns the named built-in workflow.
func Preset(name string, params Params) (Workflow, error) {
	switch name {
	case "test":
		return Test(params), nil
	case "lint":
		return Lint(params), nil
	case "release":
		return Release(params), nil
	case "docs":
		return Docs(params), nil
	default:
		return Workflow{}, errors.Errorf("unknown workflow preset %q", name)
	}
}

// Test runs the test suite across the Go version and platform matrix on
// every push and pull request.
func Test(params Params) Workflow {
	params = params.withDefaults()

	return Workflow{
		Name: "test",
		On: Trigger{
			Push:        &GitTrigger{Branches: []string{params.Branch}},
			PullRequest: &GitTrigger{},
		},
		Jobs: map[string]Job{
			"test": {
				RunsOn: "${{ matrix.os }}",
				Strategy: &Strategy{
					Matrix: map[string][]string{
						"go": params.GoVersions,
						"os": params.Platforms,
					},
				},
				Steps: []Step{
					{
						Uses: "actions/checkout@v4",
					},
					{
						Uses: "actions/setup-go@v5",
						With: map[string]string{"go-version": "${{ matrix.go }}"},
					},
					{
						Name: "Run tests",
						Run:  "go test -race -cover ./...",
					},
				},
			},
		},
	}
}

// Lint runs the non-test checks. The weekly schedule catches findings from
// updated analyzers without a code change.
func Lint(params Params) Workflow {
	params = params.withDefaults()

	return Workflow{
		Name: "lint",
		On: Trigger{
			Push:        &GitTrigger{Branches: []string{params.Branch}},
			PullRequest: &GitTrigger{},
			Schedule:    []Schedule{{Cron: "0 4 * * 1"}},
		},
		Jobs: map[string]Job{
			"lint": {
				RunsOn: "ubuntu-latest",
				Steps: []Step{
					{
						Uses: "actions/checkout@v4",
					},
					{
						Uses: "actions/setup-go@v5",
						With: map[string]string{"go-version": "stable"},
					},
					{
						Name: "Run checks",
						Run:  pkgshipRun + " check --skip test",
					},
				},
			},
		},
	}
}

// Release builds and publishes artifacts when a version tag gets pushed. The
// full history is fetched, because the version is derived from git describe.
func Release(params Params) Workflow {
	return Workflow{
		Name: "release",
		On: Trigger{
			Push: &GitTrigger{Tags: []string{"v*"}},
		},
		Permissions: map[string]string{"contents": "write"},
		Jobs: map[string]Job{
			"release": {
				RunsOn: "ubuntu-latest",
				Steps: []Step{
					{
						Uses: "actions/checkout@v4",
						With: map[string]string{"fetch-depth": "0"},
					},
					{
						Uses: "actions/setup-go@v5",
						With: map[string]string{"go-version": "stable"},
					},
					{
						Name: "Build artifacts",
						Run:  pkgshipRun + " --compress",
					},
					{
						Name: "Publish release",
						Run:  pkgshipRun + " release publish",
						Env:  map[string]string{"GITHUB_TOKEN": "${{ secrets.GITHUB_TOKEN }}"},
					},
				},
			},
		},
	}
}

// Docs builds the documentation site and deploys it to GitHub Pages.
func Docs(params Params) Workflow {
	params = params.withDefaults()

	return Workflow{
		Name: "docs",
		On: Trigger{
			Push:             &GitTrigger{Branches: []string{params.Branch}},
			WorkflowDispatch: &struct{}{},
		},
		Jobs: map[string]Job{
			"build": {
				RunsOn: "ubuntu-latest",
				Steps: []Step{
					{
						Uses: "actions/checkout@v4",
					},
					{
						Uses: "actions/setup-go@v5",
						With: map[string]string{"go-version": "stable"},
					},
					{
						Name: "Build site",
						Run:  pkgshipRun + " docs build",
					},
					{
						Uses: "actions/upload-pages-artifact@v3",
						With: map[string]string{"path": "dist/site"},
					},
				},
			},
			"deploy": {
				RunsOn: "ubuntu-latest",
				Needs:  []string{"build"},
				Permissions: map[string]string{
					"pages":    "write",
					"id-token": "write",
				},
				Environment: &Environment{
					Name: "github-pages",
					URL:  "${{ steps.deployment.outputs.page_url }}",
				},
				Steps: []Step{
					{
						ID:   "deployment",
						Uses: "actions/deploy-pages@v4",
					},
				},
			},
		},
	}
}

type dependabotSchedule struct {
	Interval string `yaml:"interval"`
}

type dependabotUpdate struct {
	PackageEcosystem string             `yaml:"package-ecosystem"`
	Directory        string             `yaml:"directory"`
	Schedule         dependabotSchedule `yaml:"schedule"`
}

type dependabotConfig struct {
	Version int                `yaml:"version"`
	Updates []dependabotUpdate `yaml:"updates"`
}

// Dependabot renders the dependabot configuration covering the Go modules
// and the workflow actions.
func Dependabot() ([]byte, error) {
	return renderYAML(dependabotConfig{
		Version: 2,
		Updates: []dependabotUpdate{
			{
				PackageEcosystem: "gomod",
				Directory:        "/",
				Schedule:         dependabotSchedule{Interval: "weekly"},
			},
			{
				PackageEcosystem: "github-actions",
				Directory:        "/",
				Schedule:         dependabotSchedule{Interval: "weekly"},
			},
		},
	})
}

// File is a rendered configuration file with its path relative to the
// repository root.
type File struct {
	Path    string
	Content []byte
}

// Files renders the requested presets. Without an explicit selection it
// renders all presets plus the dependabot configuration.
func Files(params Params, presets ...string) ([]File, error) {
	withDependabot := len(presets) == 0
	if withDependabot {
		presets = Presets
	}

	files := []File{}
	for _, name := range presets {
		wf, err := Preset(name, params)
		if err != nil {
			return nil, err
		}

		content, err := wf.Render()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to render workflow %q", name)
		}

		files = append(files, File{
			Path:    ".github/workflows/" + name + ".yml",
			Content: content,
		})
	}

	if withDependabot {
		content, err := Dependabot()
		if err != nil {
			return nil, err
		}

		files = append(files, File{
			Path:    ".github/dependabot.yml",
			Content: content,
		})
	}

	return files, nil
}
