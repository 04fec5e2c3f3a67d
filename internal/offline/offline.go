// Package offline decides whether a remote repository may be contacted given
// the session's offline mode together with its force-offline and
// allow-while-offline lists.
package offline

import (
	"net/url"
	"strings"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// Controller evaluates offline restrictions for a session.
type Controller struct{}

// New creates a Controller. It holds no state: every decision is derived
// from the session and remote passed to Check.
func New() *Controller {
	return &Controller{}
}

// Check returns a *artifact.OfflineError when the remote must not be
// contacted, or nil when contact is permitted.
//
// A remote is refused when:
//   - it matches one of the session's force-offline protocols/hosts, or
//   - the session is offline and the remote is not in the offline-allow list.
//
// A remote matches a list entry by id or by URL host.
func (c *Controller) Check(s *session.Session, remote *artifact.RemoteRepository) error {
	if remote == nil {
		return nil
	}

	if matches(remote, s.Config.ForcedOfflineProtocols, s.Config.ForcedOfflineHosts) {
		return &artifact.OfflineError{Repository: remote.ID}
	}

	if s.IsOffline() && !matchesAllowList(remote, s.Config.OfflineAllowed) {
		return &artifact.OfflineError{Repository: remote.ID}
	}

	return nil
}

func matches(remote *artifact.RemoteRepository, protocols, hosts []string) bool {
	scheme, host := schemeAndHost(remote.URL)
	for _, p := range protocols {
		if strings.EqualFold(p, scheme) {
			return true
		}
	}
	for _, h := range hosts {
		if hostMatches(host, h) {
			return true
		}
	}
	return false
}

func matchesAllowList(remote *artifact.RemoteRepository, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	_, host := schemeAndHost(remote.URL)
	for _, entry := range allowed {
		if strings.EqualFold(entry, remote.ID) || hostMatches(host, entry) {
			return true
		}
	}
	return false
}

func schemeAndHost(rawURL string) (scheme, host string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return u.Scheme, u.Hostname()
}

func hostMatches(host, pattern string) bool {
	if host == "" || pattern == "" {
		return false
	}
	if strings.EqualFold(host, pattern) {
		return true
	}
	// "*.example.com" wildcard host patterns.
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(strings.ToLower(host), strings.ToLower(pattern[1:]))
	}
	return false
}
