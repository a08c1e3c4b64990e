package artifact

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/goreleaser/nfpm/v2"
	_ "github.com/goreleaser/nfpm/v2/deb" // blank import to register the format
	"github.com/goreleaser/nfpm/v2/files"
	_ "github.com/goreleaser/nfpm/v2/rpm" // blank import to register the format
	"github.com/pkg/errors"
)

// Create writes the artifact into the dist directory. Binary artifacts are
// expected to exist already (the build step created them); bundle and
// package artifacts are derived from the binaries referenced by the plan.
// Afterwards the alias symlinks get refreshed.
func Create(distDir string, a Artifact, meta Meta) error {
	var err error

	switch a.Kind {
	case KindBinary:
		// The build step already wrote the file.

	case KindTGZ:
		err = createTGZ(distDir, a)

	case KindZip:
		err = createZip(distDir, a)

	case KindDEB, KindRPM:
		err = createPackage(distDir, a, meta)

	default:
		err = errors.Errorf("unknown artifact kind %q", a.Kind)
	}

	if err != nil {
		return err
	}

	for _, alias := range a.Aliases {
		link := filepath.Join(distDir, alias)
		os.Remove(link)

		err := os.Symlink(a.Filename, link)
		if err != nil {
			return errors.Wrapf(err, "failed to create alias %s", alias)
		}
	}

	return nil
}

func createTGZ(distDir string, a Artifact) error {
	dst, err := os.Create(filepath.Join(distDir, a.Filename))
	if err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()

	zw := gzip.NewWriter(dst)
	tw := tar.NewWriter(zw)

	for name, src := range a.Binaries {
		f, err := os.Open(filepath.Join(distDir, src))
		if err != nil {
			return errors.WithStack(err)
		}

		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return errors.WithStack(err)
		}

		err = tw.WriteHeader(&tar.Header{
			Name:    name,
			Mode:    0755,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		if err != nil {
			f.Close()
			return errors.WithStack(err)
		}

		_, err = io.Copy(tw, f)
		f.Close()
		if err != nil {
			return errors.WithStack(err)
		}
	}

	err = tw.Close()
	if err != nil {
		return errors.WithStack(err)
	}

	err = zw.Close()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(dst.Close())
}

func createZip(distDir string, a Artifact) error {
	dst, err := os.Create(filepath.Join(distDir, a.Filename))
	if err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()

	zw := zip.NewWriter(dst)

	for name, src := range a.Binaries {
		f, err := os.Open(filepath.Join(distDir, src))
		if err != nil {
			return errors.WithStack(err)
		}

		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return errors.WithStack(err)
		}

		hdr, err := zip.FileInfoHeader(fi)
		if err != nil {
			f.Close()
			return errors.WithStack(err)
		}
		hdr.Name = name
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			f.Close()
			return errors.WithStack(err)
		}

		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return errors.WithStack(err)
		}
	}

	err = zw.Close()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(dst.Close())
}

func createPackage(distDir string, a Artifact, meta Meta) error {
	contents := files.Contents{}
	for name, src := range a.Binaries {
		contents = append(contents, &files.Content{
			Source:      filepath.Join(distDir, src),
			Destination: filepath.Join("/usr/bin", name),
			FileInfo: &files.ContentFileInfo{
				Mode: 0755,
			},
		})
	}

	info := &nfpm.Info{
		Name:        meta.Name,
		Arch:        a.System.Arch,
		Platform:    a.System.OS,
		Version:     meta.Version,
		Release:     meta.Release,
		Description: meta.Description,
		Homepage:    meta.Homepage,
		License:     meta.License,
		Maintainer:  meta.Maintainer,
		Overridables: nfpm.Overridables{
			Contents: contents,
		},
	}

	err := nfpm.Validate(info)
	if err != nil {
		return errors.Wrap(err, "invalid package info")
	}

	packager, err := nfpm.Get(a.Kind)
	if err != nil {
		return errors.WithStack(err)
	}

	w, err := os.Create(filepath.Join(distDir, a.Filename))
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()

	err = packager.Package(nfpm.WithDefaults(info), w)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s package", a.Kind)
	}

	return errors.WithStack(w.Close())
}
