package scaffold

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// Data is the context every template file gets rendered with.
type Data struct {
	Name        string // project name as used in file names and manifests
	Module      string // module path
	Package     string // Go package name derived from the project name
	Owner       string // repository owner for github.com modules, else empty
	Description string
	Author      string
	License     string
	GoVersion   string
	Year        int
	Binary      bool
}

func render(name, src string, data Data) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(src)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template %s", name)
	}

	buf := new(bytes.Buffer)
	err = tmpl.Execute(buf, data)
	if err != nil {
		return "", errors.Wrapf(err, "failed to render template %s", name)
	}

	return buf.String(), nil
}

var rePackageChars = regexp.MustCompile(`[^a-z0-9_]`)

// packageName turns a project name into a usable Go package name, eg
// `demo-lib` becomes `demolib`.
func packageName(name string) string {
	pkg := strings.ToLower(name)
	pkg = rePackageChars.ReplaceAllString(pkg, "")

	if pkg == "" || pkg[0] >= '0' && pkg[0] <= '9' {
		pkg = "pkg" + pkg
	}

	return pkg
}

// moduleOwner extracts the repository owner from forge-style module paths
// like github.com/acme/tool. It returns an empty string for anything else.
func moduleOwner(module string) string {
	parts := strings.Split(module, "/")
	if len(parts) < 3 {
		return ""
	}

	switch parts[0] {
	case "github.com", "gitlab.com", "codeberg.org":
		return parts[1]
	}

	return ""
}
