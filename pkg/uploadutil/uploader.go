package uploadutil

import (
	"context"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/pkgship/pkgship/pkg/logutil"
)

// Uploader uploads files to S3 with object tagging.
type Uploader struct {
	manager *manager.Uploader
}

// New creates an Uploader from the ambient AWS configuration (environment,
// shared config, instance role).
func New(ctx context.Context) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &Uploader{
		manager: manager.NewUploader(s3.NewFromConfig(cfg)),
	}, nil
}

// Upload stores the file at the given S3 location. The tags end up as object
// tags, so bucket lifecycle rules can expire snapshot artifacts earlier than
// releases.
func (u *Uploader) Upload(ctx context.Context, dest S3URL, path string, tags url.Values) error {
	logutil.Get(ctx).Info("uploading artifact", "dest", dest.String(), "path", path)

	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	_, err = u.manager.Upload(ctx, &s3.PutObjectInput{
		Bucket:  &dest.Bucket,
		Key:     &dest.Key,
		Tagging: aws.String(tags.Encode()),
		Body:    f,
	})

	return errors.Wrapf(err, "failed to upload %s", dest)
}
