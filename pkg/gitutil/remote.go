package gitutil

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// RemoteInfo is the parsed origin remote of a repository.
type RemoteInfo struct {
	Host  string
	Owner string
	Name  string
}

var reSCPLike = regexp.MustCompile(`^(?:[\w\-\.]+@)?([\w\-\.]+):(.+)$`)

// Remote parses the URL of the origin remote. It understands the HTTPS, SSH
// and SCP-like forms that GitHub and most other forges use.
func (r *Repo) Remote() (RemoteInfo, error) {
	remote, err := r.repo.Remote("origin")
	if err != nil {
		return RemoteInfo{}, errors.Wrap(err, "failed to get origin remote")
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return RemoteInfo{}, errors.New("origin remote has no URL")
	}

	return ParseRemoteURL(urls[0])
}

// ParseRemoteURL splits a git remote URL into host, owner and repository
// name.
func ParseRemoteURL(raw string) (RemoteInfo, error) {
	var (
		host string
		path string
	)

	switch {
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
		host, path, _ = strings.Cut(trimmed, "/")

	case strings.HasPrefix(raw, "ssh://"):
		trimmed := strings.TrimPrefix(raw, "ssh://")
		host, path, _ = strings.Cut(trimmed, "/")
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}

	default:
		m := reSCPLike.FindStringSubmatch(raw)
		if m == nil {
			return RemoteInfo{}, errors.Errorf("unsupported remote URL %q", raw)
		}
		host, path = m[1], m[2]
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")

	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return RemoteInfo{}, errors.Errorf("remote URL %q has no owner/name path", raw)
	}

	return RemoteInfo{
		Host:  host,
		Owner: parts[len(parts)-2],
		Name:  parts[len(parts)-1],
	}, nil
}
