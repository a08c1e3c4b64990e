// Package registry talks to the Go module ecosystem services: the module
// proxy and the checksum database. Go has no write API for registration;
// requesting a version from the proxy is what makes it fetch, index and
// serve the new tag, so that request is the registration.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/mod/module"

	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/runutil"
)

// Defaults used when the manifest does not override them.
const (
	DefaultProxy = "https://proxy.golang.org"
	DefaultSumDB = "https://sum.golang.org"
)

// ErrNotRegistered gets returned when the proxy or the checksum database
// does not know the requested version yet. This is expected right after
// pushing a tag and resolves itself once the proxy fetched the module.
var ErrNotRegistered = errors.New("version is not known to the registry yet")

// VersionInfo is the proxy's answer for a single module version.
type VersionInfo struct {
	Version string
	Time    time.Time
}

// Client queries a module proxy and a checksum database.
type Client struct {
	proxy *resty.Client
	sumdb *resty.Client
}

// New creates a Client. Empty URLs fall back to the public Go
// infrastructure.
func New(proxyURL, sumdbURL string) *Client {
	if proxyURL == "" {
		proxyURL = DefaultProxy
	}
	if sumdbURL == "" {
		sumdbURL = DefaultSumDB
	}

	newClient := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(base).
			SetRetryCount(3).
			SetRetryWaitTime(time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err == nil && r.StatusCode() >= 500
			})
	}

	return &Client{
		proxy: newClient(proxyURL),
		sumdb: newClient(sumdbURL),
	}
}

func escape(modulePath, version string) (string, string, error) {
	p, err := module.EscapePath(modulePath)
	if err != nil {
		return "", "", errors.Wrapf(err, "invalid module path %q", modulePath)
	}

	if version == "" {
		return p, "", nil
	}

	v, err := module.EscapeVersion(version)
	if err != nil {
		return "", "", errors.Wrapf(err, "invalid version %q", version)
	}

	return p, v, nil
}

func notFound(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}

// Info fetches the proxy's version metadata. It returns ErrNotRegistered
// for versions the proxy does not serve (yet).
func (c *Client) Info(ctx context.Context, modulePath, version string) (*VersionInfo, error) {
	p, v, err := escape(modulePath, version)
	if err != nil {
		return nil, err
	}

	info := new(VersionInfo)
	resp, err := c.proxy.R().
		SetContext(ctx).
		SetResult(info).
		Get(fmt.Sprintf("/%s/@v/%s.info", p, v))
	if err != nil {
		return nil, errors.Wrap(err, "proxy request failed")
	}

	if notFound(resp.StatusCode()) {
		return nil, errors.WithStack(ErrNotRegistered)
	}
	if resp.IsError() {
		return nil, errors.Errorf("proxy request failed with status %d", resp.StatusCode())
	}

	return info, nil
}

// Latest returns the version the proxy considers the latest release.
func (c *Client) Latest(ctx context.Context, modulePath string) (*VersionInfo, error) {
	p, _, err := escape(modulePath, "")
	if err != nil {
		return nil, err
	}

	info := new(VersionInfo)
	resp, err := c.proxy.R().
		SetContext(ctx).
		SetResult(info).
		Get(fmt.Sprintf("/%s/@latest", p))
	if err != nil {
		return nil, errors.Wrap(err, "proxy request failed")
	}

	if notFound(resp.StatusCode()) {
		return nil, errors.WithStack(ErrNotRegistered)
	}
	if resp.IsError() {
		return nil, errors.Errorf("proxy request failed with status %d", resp.StatusCode())
	}

	return info, nil
}

// List returns all versions the proxy serves for the module. A module the
// proxy never saw yields an empty list, not an error.
func (c *Client) List(ctx context.Context, modulePath string) ([]string, error) {
	p, _, err := escape(modulePath, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.proxy.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/%s/@v/list", p))
	if err != nil {
		return nil, errors.Wrap(err, "proxy request failed")
	}

	if notFound(resp.StatusCode()) {
		return []string{}, nil
	}
	if resp.IsError() {
		return nil, errors.Errorf("proxy request failed with status %d", resp.StatusCode())
	}

	versions := []string{}
	for _, line := range strings.Split(strings.TrimSpace(resp.String()), "\n") {
		if line != "" {
			versions = append(versions, line)
		}
	}

	return versions, nil
}

// Register asks the proxy for the version, which triggers the fetch and
// indexing of a freshly pushed tag. It is the Go analog of a registration
// request.
func (c *Client) Register(ctx context.Context, modulePath, version string) (*VersionInfo, error) {
	return c.Info(ctx, modulePath, version)
}

// Checksum looks the version up in the checksum database and returns the
// raw record lines.
func (c *Client) Checksum(ctx context.Context, modulePath, version string) ([]string, error) {
	p, _, err := escape(modulePath, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.sumdb.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/lookup/%s@%s", p, version))
	if err != nil {
		return nil, errors.Wrap(err, "checksum database request failed")
	}

	if notFound(resp.StatusCode()) {
		return nil, errors.WithStack(ErrNotRegistered)
	}
	if resp.IsError() {
		return nil, errors.Errorf("checksum database request failed with status %d", resp.StatusCode())
	}

	return strings.Split(strings.TrimSpace(resp.String()), "\n"), nil
}

// WaitRegistered polls the proxy until the version is served or the context
// expires. Right after a tag push the proxy needs a while to fetch the
// module, so the registration command waits with a backoff instead of
// failing on the first 404.
func (c *Client) WaitRegistered(ctx context.Context, modulePath, version string) (*VersionInfo, error) {
	bo := runutil.ExponentialBackoff{
		Initial:          2 * time.Second,
		Max:              30 * time.Second,
		JitterProportion: 0.5,
	}

	for attempt := 0; ; attempt++ {
		runutil.Wait(ctx, bo.Duration(attempt))

		if ctx.Err() != nil {
			return nil, errors.Wrap(ErrNotRegistered, "gave up waiting")
		}

		info, err := c.Register(ctx, modulePath, version)
		if errors.Is(err, ErrNotRegistered) {
			logutil.Get(ctx).Info("version not indexed yet, retrying",
				"module", modulePath,
				"version", version,
				"attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		return info, nil
	}
}

// DocURL returns the pkg.go.dev page of the version.
func DocURL(modulePath, version string) string {
	return fmt.Sprintf("https://pkg.go.dev/%s@%s", modulePath, version)
}
