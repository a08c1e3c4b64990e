package scaffold

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// LicenseNone skips the LICENSE file.
const LicenseNone = "none"

var licenseFiles = map[string]string{
	"MIT":          "templates/licenses/mit.tmpl",
	"Apache-2.0":   "templates/licenses/apache-2.0.tmpl",
	"BSD-3-Clause": "templates/licenses/bsd-3-clause.tmpl",
}

// Licenses returns the supported license identifiers, sorted.
func Licenses() []string {
	ids := []string{}
	for id := range licenseFiles {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids
}

func licenseFile(id string) (File, error) {
	path, ok := licenseFiles[id]
	if !ok {
		return File{}, errors.Errorf(
			"unsupported license %q (supported: %s, %s)",
			id, strings.Join(Licenses(), ", "), LicenseNone)
	}

	return File{Name: "LICENSE", Content: mustTemplate(path)}, nil
}
