// Package scaffold generates new project directories from templates. The
// built-in templates cover importable libraries and CLI tools; custom files
// can be layered on top from a local directory.
package scaffold

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Template is a named set of files that can be rendered into a new project
// directory.
type Template interface {
	// Metadata returns template information.
	Metadata() Metadata

	// Files returns all template files with their content as text/template
	// source. File names may contain template expressions as well.
	Files() []File
}

// Metadata describes a template.
type Metadata struct {
	Name        string
	Description string

	// Binary is true for templates that produce an installable command
	// instead of an importable library.
	Binary bool
}

// File is a single file to generate. Permissions of zero mean 0644.
type File struct {
	Name        string
	Content     string
	Permissions uint32
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Template{}
)

// Register adds a template under the given name. It panics when the name is
// already taken, since templates get registered from init functions.
func Register(name string, tmpl Template) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if tmpl == nil {
		panic("scaffold: Register called with nil template")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("scaffold: template %q registered twice", name))
	}

	registry[name] = tmpl
}

// Get retrieves a template by name.
func Get(name string) (Template, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	tmpl, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown template %q", name)
	}

	return tmpl, nil
}

// List returns the metadata of all registered templates, sorted by name.
func List() []Metadata {
	registryMu.RLock()
	defer registryMu.RUnlock()

	metas := []Metadata{}
	for _, tmpl := range registry {
		metas = append(metas, tmpl.Metadata())
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Name < metas[j].Name
	})

	return metas
}
