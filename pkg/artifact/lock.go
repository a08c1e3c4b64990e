package artifact

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// LockDist takes an exclusive file lock on the dist directory, so two
// pipeline invocations cannot corrupt each other's artifacts. The returned
// function releases the lock.
func LockDist(distDir string) (func(), error) {
	err := os.MkdirAll(distDir, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dist directory")
	}

	fl := flock.New(filepath.Join(distDir, ".lock"))

	err = fl.Lock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock dist directory")
	}

	return func() {
		_ = fl.Unlock()
	}, nil
}
