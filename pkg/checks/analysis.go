package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/checker"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/packages"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
)

// AnalysisCheck runs the static analyzers in-process: the curated vet-style
// passes from x/tools plus the staticcheck SA and simple S1 analyzers.
type AnalysisCheck struct{}

func (c *AnalysisCheck) Name() string {
	return "analysis"
}

// vetAnalyzers is the subset of x/tools passes that has a near-zero false
// positive rate on typical projects. Analyzers that require configuration
// are left out.
func vetAnalyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		atomic.Analyzer,
		bools.Analyzer,
		copylock.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		printf.Analyzer,
		shift.Analyzer,
		stdmethods.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,
	}
}

func staticcheckAnalyzers() []*analysis.Analyzer {
	analyzers := []*analysis.Analyzer{}

	add := func(list []*lint.Analyzer, prefix string) {
		for _, a := range list {
			if strings.HasPrefix(a.Analyzer.Name, prefix) {
				analyzers = append(analyzers, a.Analyzer)
			}
		}
	}

	add(staticcheck.Analyzers, "SA")
	add(simple.Analyzers, "S1")

	return analyzers
}

func (c *AnalysisCheck) Run(ctx context.Context, env *Env) ([]Diagnostic, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     env.Info.Go.Dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedTypesSizes | packages.NeedSyntax |
			packages.NeedModule,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}

	loadErrs := []string{}
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			loadErrs = append(loadErrs, err.Error())
		}
	})
	if len(loadErrs) > 0 {
		return nil, errors.Errorf(
			"packages do not compile: %s", strings.Join(loadErrs, "; "))
	}

	analyzers := append(vetAnalyzers(), staticcheckAnalyzers()...)

	graph, err := checker.Analyze(analyzers, pkgs, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run analyzers")
	}

	diags := []Diagnostic{}
	for _, act := range graph.Roots {
		if act.Err != nil {
			return nil, errors.Wrapf(act.Err, "analyzer %s failed", act.Analyzer.Name)
		}

		for _, d := range act.Diagnostics {
			pos := act.Package.Fset.Position(d.Pos)

			if env.Excluded(pos.Filename) {
				continue
			}

			diags = append(diags, Diagnostic{
				Position: fmt.Sprintf("%s:%d:%d",
					relPath(env.Info.Go.Dir, pos.Filename), pos.Line, pos.Column),
				Message:  d.Message,
				Category: act.Analyzer.Name,
			})
		}
	}

	return diags, nil
}
