package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/scaffold"
)

// NewRunner scaffolds a new project. Missing inputs get asked interactively
// when running on a terminal; in scripts and CI all inputs must come from
// flags.
type NewRunner struct {
	opts scaffold.Options

	listTemplates bool
}

func (r *NewRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVar(
		&r.opts.Name, "name", "",
		"Project name, also used as directory name.")
	cmd.PersistentFlags().StringVar(
		&r.opts.Module, "module", "",
		"Module path (eg github.com/acme/demo).")
	cmd.PersistentFlags().StringVar(
		&r.opts.Description, "description", "",
		"One line description for README and manifest.")
	cmd.PersistentFlags().StringVar(
		&r.opts.Author, "author", "",
		"Author for the license and maintainer fields.")
	cmd.PersistentFlags().StringVar(
		&r.opts.License, "license", "",
		"License identifier: MIT, Apache-2.0, BSD-3-Clause or none.")
	cmd.PersistentFlags().StringVarP(
		&r.opts.Template, "template", "t", "",
		"Project template, see --list.")
	cmd.PersistentFlags().StringVar(
		&r.opts.GoVersion, "go-version", "",
		"Go version for the go directive of the generated go.mod.")
	cmd.PersistentFlags().StringVar(
		&r.opts.From, "from", "",
		"Directory whose contents overlay the generated files.")
	cmd.PersistentFlags().StringVarP(
		&r.opts.Dir, "dir", "C", "",
		"Parent directory receiving the project.")
	cmd.PersistentFlags().BoolVar(
		&r.opts.SkipGit, "skip-git", false,
		"Do not initialize a git repository.")
	cmd.PersistentFlags().BoolVar(
		&r.opts.SkipTidy, "skip-tidy", false,
		"Do not run `go mod tidy` in the generated project.")
	cmd.PersistentFlags().BoolVar(
		&r.listTemplates, "list", false,
		"List the available templates and exit.")

	return nil
}

func (r *NewRunner) Run(ctx context.Context, args []string) error {
	if r.listTemplates {
		for _, meta := range scaffold.List() {
			fmt.Printf("%-12s %s\n", meta.Name, meta.Description)
		}
		return nil
	}

	if len(args) > 0 && r.opts.Name == "" {
		r.opts.Name = args[0]
	}

	err := r.fillInteractive()
	if err != nil {
		return err
	}

	result, err := scaffold.Generate(ctx, r.opts)
	if err != nil {
		return err
	}

	log := logutil.Get(ctx)
	log.Info("project created",
		"dir", result.Dir,
		"template", result.Template,
		"files", len(result.Files))

	fmt.Printf("Created %s in %s\n\nNext steps:\n", r.opts.Name, result.Dir)
	fmt.Printf("  cd %s\n  pkgship check\n", result.Dir)

	return nil
}

// fillInteractive asks for the missing required inputs. Without a terminal
// it leaves the options untouched and Generate reports what is missing.
func (r *NewRunner) fillInteractive() error {
	if r.opts.Name != "" && r.opts.Module != "" {
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	templates := []huh.Option[string]{}
	for _, meta := range scaffold.List() {
		templates = append(templates,
			huh.NewOption(fmt.Sprintf("%s (%s)", meta.Name, meta.Description), meta.Name))
	}

	if r.opts.Template == "" {
		r.opts.Template = "library"
	}
	if r.opts.License == "" {
		r.opts.License = "MIT"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&r.opts.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Module path").
				Description("eg github.com/acme/demo").
				Value(&r.opts.Module).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("module path must not be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Template").
				Options(templates...).
				Value(&r.opts.Template),
			huh.NewSelect[string]().
				Title("License").
				Options(
					huh.NewOption("MIT", "MIT"),
					huh.NewOption("Apache 2.0", "Apache-2.0"),
					huh.NewOption("BSD 3-Clause", "BSD-3-Clause"),
					huh.NewOption("none", "none"),
				).
				Value(&r.opts.License),
			huh.NewInput().
				Title("Description").
				Value(&r.opts.Description),
			huh.NewInput().
				Title("Author").
				Value(&r.opts.Author),
		),
	)

	return errors.Wrap(form.Run(), "prompt aborted")
}
