package scaffold

import (
	"embed"
	"fmt"
)

//go:embed templates
var templatesFS embed.FS

func mustTemplate(path string) string {
	content, err := templatesFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("scaffold: missing embedded template %s: %v", path, err))
	}

	return string(content)
}

type builtinTemplate struct {
	meta  Metadata
	files []File
}

func (t *builtinTemplate) Metadata() Metadata {
	return t.meta
}

func (t *builtinTemplate) Files() []File {
	return t.files
}

func commonFiles() []File {
	return []File{
		{Name: "go.mod", Content: mustTemplate("templates/common/go.mod.tmpl")},
		{Name: ".pkgship.yaml", Content: mustTemplate("templates/common/manifest.yaml.tmpl")},
		{Name: "README.md", Content: mustTemplate("templates/common/readme.md.tmpl")},
		{Name: ".gitignore", Content: mustTemplate("templates/common/gitignore.tmpl")},
		{Name: "CONTRIBUTING.md", Content: mustTemplate("templates/common/contributing.md.tmpl")},
		{Name: ".github/CODEOWNERS", Content: mustTemplate("templates/common/codeowners.tmpl")},
		{Name: ".github/ISSUE_TEMPLATE/bug_report.md", Content: mustTemplate("templates/common/bug-report.md.tmpl")},
		{Name: ".github/ISSUE_TEMPLATE/feature_request.md", Content: mustTemplate("templates/common/feature-request.md.tmpl")},
		{Name: ".github/pull_request_template.md", Content: mustTemplate("templates/common/pull-request.md.tmpl")},
	}
}

func init() {
	Register("library", &builtinTemplate{
		meta: Metadata{
			Name:        "library",
			Description: "An importable Go library with a starter package",
		},
		files: append(commonFiles(),
			File{Name: "{{ .Package }}.go", Content: mustTemplate("templates/library/lib.go.tmpl")},
			File{Name: "{{ .Package }}_test.go", Content: mustTemplate("templates/library/lib_test.go.tmpl")},
			File{Name: "tools.go", Content: mustTemplate("templates/library/tools.go.tmpl")},
		),
	})

	Register("cli", &builtinTemplate{
		meta: Metadata{
			Name:        "cli",
			Description: "A command line tool with the cmdutil runner layout",
			Binary:      true,
		},
		files: append(commonFiles(),
			File{Name: "main.go", Content: mustTemplate("templates/cli/main.go.tmpl")},
			File{Name: "cmd/root.go", Content: mustTemplate("templates/cli/root.go.tmpl")},
			File{Name: "pkg/cmdutil/version.go", Content: mustTemplate("templates/cli/version.go.tmpl")},
			File{Name: "tools.go", Content: mustTemplate("templates/cli/tools.go.tmpl")},
		),
	})
}
