// Package checks contains the quality gate of the pipeline: file formatting,
// static analysis, the test suite and module tidiness. Each check inspects
// the project and reports diagnostics; findings never abort the suite, only
// broken infrastructure does.
package checks

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/manifest"
	"github.com/pkgship/pkgship/pkg/project"
)

// Status classifies the outcome of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Diagnostic is a single finding of a check.
type Diagnostic struct {
	// Position is a file, a file:line:column location or a package path,
	// depending on what the check inspects.
	Position string

	Message string

	// Category names the analyzer or sub-check that produced the finding.
	Category string `json:",omitempty"`
}

// Result is the outcome of one check.
type Result struct {
	Name        string
	Status      Status
	Duration    time.Duration
	Diagnostics []Diagnostic `json:",omitempty"`

	// Error describes an infrastructure failure, eg packages that do not
	// load. It is unrelated to findings.
	Error string `json:",omitempty"`
}

// Check inspects one aspect of the project. Run returns findings; the error
// return is reserved for infrastructure failures.
type Check interface {
	Name() string
	Run(ctx context.Context, env *Env) ([]Diagnostic, error)
}

// Env is the read-only environment the checks operate on.
type Env struct {
	Info      *project.Info
	Config    manifest.ChecksConfig
	GoCommand string
}

// NewEnv builds the check environment from the collected project info and
// the manifest.
func NewEnv(info *project.Info, m *manifest.Manifest) *Env {
	return &Env{
		Info:      info,
		Config:    m.Checks,
		GoCommand: "go",
	}
}

// Files returns the Go files of the project with the manifest excludes
// filtered out.
func (e *Env) Files() []string {
	files := []string{}
	for _, file := range e.Info.Packages.Files {
		if e.Excluded(file) {
			continue
		}
		files = append(files, file)
	}

	return files
}

// Excluded reports whether the given file matches one of the manifest
// exclude globs. The globs are relative to the project root.
func (e *Env) Excluded(file string) bool {
	rel, err := filepath.Rel(e.Info.Go.Dir, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range e.Config.Exclude {
		ok, err := doublestar.Match(pattern, rel)
		if err == nil && ok {
			return true
		}
	}

	return false
}

// All returns every available check in execution order.
func All() []Check {
	return []Check{
		&FormatCheck{},
		&AnalysisCheck{},
		&TestCheck{},
		&TidyCheck{},
	}
}

// Select filters the available checks. Only limits the run to the named
// checks when non-empty; skip drops checks afterwards. Unknown names are an
// error, so a typo does not silently pass the gate.
func Select(only, skip []string) ([]Check, error) {
	byName := map[string]Check{}
	for _, c := range All() {
		byName[c.Name()] = c
	}

	for _, name := range append(append([]string{}, only...), skip...) {
		if _, ok := byName[name]; !ok {
			return nil, errors.Errorf("unknown check %q", name)
		}
	}

	skipped := map[string]bool{}
	for _, name := range skip {
		skipped[name] = true
	}

	selected := []Check{}
	for _, c := range All() {
		if len(only) > 0 && !contains(only, c.Name()) {
			continue
		}
		if skipped[c.Name()] {
			continue
		}
		selected = append(selected, c)
	}

	return selected, nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Runner executes checks and collects their results.
type Runner struct {
	// Parallel bounds the number of concurrently running checks. Zero or
	// one runs them sequentially in order.
	Parallel int
}

// Run executes all given checks. Infrastructure failures are recorded on the
// result instead of aborting the run, so one broken check does not hide the
// findings of the others.
func (r *Runner) Run(ctx context.Context, env *Env, checks []Check) []Result {
	results := make([]Result, len(checks))

	run := func(i int, check Check) {
		log := logutil.Get(logutil.Start(ctx, "check/"+check.Name()))
		log.Info("running check", "check", check.Name())

		start := time.Now()
		diags, err := check.Run(ctx, env)

		results[i] = Result{
			Name:        check.Name(),
			Duration:    time.Since(start).Truncate(time.Millisecond),
			Diagnostics: diags,
		}

		switch {
		case err != nil:
			results[i].Status = StatusFail
			results[i].Error = err.Error()
		case len(diags) > 0:
			results[i].Status = StatusFail
		default:
			results[i].Status = StatusOK
		}
	}

	if r.Parallel > 1 {
		grp, grpCtx := errgroup.WithContext(ctx)
		grp.SetLimit(r.Parallel)
		ctx = grpCtx

		for i, check := range checks {
			grp.Go(func() error {
				run(i, check)
				return nil
			})
		}

		// The workers never return errors; Wait only synchronizes.
		_ = grp.Wait()
	} else {
		for i, check := range checks {
			run(i, check)
		}
	}

	return results
}

// Failed reports whether any result failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}
