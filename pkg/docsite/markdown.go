package docsite

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
)

// Markdown renders the site as a single markdown document. This is the
// source for the terminal preview, but also useful on its own, eg to paste
// into a wiki.
func Markdown(site *Site) string {
	buf := new(strings.Builder)

	fmt.Fprintf(buf, "# %s\n\n", site.Title)
	fmt.Fprintf(buf, "`%s`", site.Module)
	if site.Version != "" {
		fmt.Fprintf(buf, " %s", site.Version)
	}
	buf.WriteString("\n")

	for i := range site.Packages {
		writePackageMarkdown(buf, &site.Packages[i])
	}

	return buf.String()
}

func writePackageMarkdown(buf *strings.Builder, pkg *Package) {
	fmt.Fprintf(buf, "\n## %s\n\n", pkg.Path)

	if pkg.Doc != "" {
		buf.WriteString(strings.TrimSpace(pkg.Doc))
		buf.WriteString("\n")
	}

	writeValuesMarkdown(buf, "Constants", pkg.Consts)
	writeValuesMarkdown(buf, "Variables", pkg.Vars)

	if len(pkg.Funcs) > 0 {
		buf.WriteString("\n### Functions\n")
		for _, f := range pkg.Funcs {
			writeFuncMarkdown(buf, f)
		}
	}

	for _, t := range pkg.Types {
		fmt.Fprintf(buf, "\n### type %s\n\n", t.Name)
		writeCodeBlock(buf, t.Decl)
		if t.Doc != "" {
			buf.WriteString(strings.TrimSpace(t.Doc))
			buf.WriteString("\n")
		}

		for _, f := range t.Funcs {
			writeFuncMarkdown(buf, f)
		}
		for _, m := range t.Methods {
			writeFuncMarkdown(buf, m)
		}
	}
}

func writeValuesMarkdown(buf *strings.Builder, heading string, values []Value) {
	if len(values) == 0 {
		return
	}

	fmt.Fprintf(buf, "\n### %s\n\n", heading)
	for _, v := range values {
		writeCodeBlock(buf, v.Decl)
		if v.Doc != "" {
			buf.WriteString(strings.TrimSpace(v.Doc))
			buf.WriteString("\n")
		}
	}
}

func writeFuncMarkdown(buf *strings.Builder, f Func) {
	buf.WriteString("\n")
	writeCodeBlock(buf, f.Signature)
	if f.Doc != "" {
		buf.WriteString(strings.TrimSpace(f.Doc))
		buf.WriteString("\n")
	}
}

func writeCodeBlock(buf *strings.Builder, code string) {
	fmt.Fprintf(buf, "```go\n%s\n```\n\n", strings.TrimRight(code, "\n"))
}

// Preview renders the site's markdown with terminal styling to w.
func Preview(site *Site, w io.Writer) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create renderer")
	}

	out, err := renderer.Render(Markdown(site))
	if err != nil {
		return errors.Wrap(err, "failed to render preview")
	}

	_, err = io.WriteString(w, out)
	return errors.WithStack(err)
}
