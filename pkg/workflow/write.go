package workflow

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// Statuses reported by WriteFiles.
const (
	StatusCreated   = "created"
	StatusUnchanged = "unchanged"
	StatusUpdated   = "updated"
	StatusConflict  = "conflict"
)

// ErrConflicts gets returned by WriteFiles, if existing files differ from
// the generated ones and overwriting is not forced. Nothing is written in
// that case.
var ErrConflicts = errors.New("refusing to overwrite existing files")

// WriteResult describes what happened to a single file. Diff carries a
// unified diff between the existing and the generated content for files
// that differ.
type WriteResult struct {
	Path   string
	Status string
	Diff   string `json:",omitempty"`
}

// WriteFiles writes the rendered files below dir. Existing files that match
// are left alone; differing files are only overwritten with force. Conflicts
// abort the whole write, so a repository never ends up with a half-applied
// set of workflows.
func WriteFiles(dir string, files []File, force bool) ([]WriteResult, error) {
	results := []WriteResult{}
	conflicts := false

	for _, file := range files {
		target := filepath.Join(dir, filepath.FromSlash(file.Path))
		result := WriteResult{Path: file.Path}

		existing, err := os.ReadFile(target)
		switch {
		case os.IsNotExist(err):
			result.Status = StatusCreated
		case err != nil:
			return nil, errors.Wrapf(err, "failed to read %s", file.Path)
		case bytes.Equal(existing, file.Content):
			result.Status = StatusUnchanged
		default:
			result.Diff = unifiedDiff(file.Path, existing, file.Content)
			if force {
				result.Status = StatusUpdated
			} else {
				result.Status = StatusConflict
				conflicts = true
			}
		}

		results = append(results, result)
	}

	if conflicts {
		return results, errors.WithStack(ErrConflicts)
	}

	for i, file := range files {
		if results[i].Status == StatusUnchanged {
			continue
		}

		target := filepath.Join(dir, filepath.FromSlash(file.Path))

		err := os.MkdirAll(filepath.Dir(target), 0755)
		if err != nil {
			return results, errors.Wrapf(err, "failed to create directory for %s", file.Path)
		}

		err = os.WriteFile(target, file.Content, 0644)
		if err != nil {
			return results, errors.Wrapf(err, "failed to write %s", file.Path)
		}
	}

	return results, nil
}

func unifiedDiff(path string, existing, generated []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(generated)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return ""
	}

	return diff
}
