// Package uploadutil uploads release artifacts to S3. The bucket and key
// prefix come from an s3:// URL, the way the build pipelines pass it around.
package uploadutil

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// S3URL is a parsed s3://bucket/prefix location.
type S3URL struct {
	Bucket string
	Key    string
}

// ParseS3URL parses an s3:// URL into bucket and key.
func ParseS3URL(raw string) (*S3URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid S3 URL %q", raw)
	}

	if u.Scheme != "s3" {
		return nil, errors.Errorf("invalid S3 URL %q, want s3://bucket/prefix", raw)
	}

	if u.Host == "" {
		return nil, errors.Errorf("S3 URL %q has no bucket", raw)
	}

	return &S3URL{
		Bucket: u.Host,
		Key:    strings.Trim(u.Path, "/"),
	}, nil
}

// Subpath returns a copy of the URL with the given path elements appended to
// the key.
func (u S3URL) Subpath(parts ...string) S3URL {
	u.Key = path.Join(append([]string{u.Key}, parts...)...)
	return u
}

func (u S3URL) String() string {
	return fmt.Sprintf("s3://%s/%s", u.Bucket, u.Key)
}
