package artifact

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteChecksums writes a SHA-256 checksum file covering all artifacts into
// the dist directory and returns its filename. The format matches
// `sha256sum`, so consumers can verify downloads with stock tooling.
func WriteChecksums(distDir, name string, artifacts []Artifact) (string, error) {
	lines := new(strings.Builder)

	for _, a := range artifacts {
		sum, err := fileSHA256(filepath.Join(distDir, a.Filename))
		if err != nil {
			return "", err
		}

		fmt.Fprintf(lines, "%s  %s\n", sum, a.Filename)
	}

	filename := name + ".sha256"

	err := os.WriteFile(filepath.Join(distDir, filename), []byte(lines.String()), 0644)
	if err != nil {
		return "", errors.Wrap(err, "failed to write checksum file")
	}

	return filename, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	h := sha256.New()
	_, err = io.Copy(h, f)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
