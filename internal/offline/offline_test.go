package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

func newSession(cfg session.Config) *session.Session {
	return session.New("test", cfg)
}

func TestOnlineSessionAllowsAnyRemote(t *testing.T) {
	c := New()
	s := newSession(session.DefaultConfig())
	err := c.Check(s, &artifact.RemoteRepository{ID: "central", URL: "https://repo.example.com"})
	require.NoError(t, err)
}

func TestOfflineSessionRejectsUnlistedRemote(t *testing.T) {
	c := New()
	s := newSession(session.DefaultConfig())
	s.SetOffline(true)

	err := c.Check(s, &artifact.RemoteRepository{ID: "central", URL: "https://repo.example.com"})
	require.Error(t, err)
	var offlineErr *artifact.OfflineError
	assert.ErrorAs(t, err, &offlineErr)
}

func TestOfflineSessionAllowsListedRemoteByID(t *testing.T) {
	c := New()
	cfg := session.DefaultConfig()
	cfg.OfflineAllowed = []string{"central"}
	s := newSession(cfg)
	s.SetOffline(true)

	err := c.Check(s, &artifact.RemoteRepository{ID: "central", URL: "https://repo.example.com"})
	require.NoError(t, err)
}

func TestOfflineSessionAllowsListedRemoteByHost(t *testing.T) {
	c := New()
	cfg := session.DefaultConfig()
	cfg.OfflineAllowed = []string{"*.internal.example.com"}
	s := newSession(cfg)
	s.SetOffline(true)

	err := c.Check(s, &artifact.RemoteRepository{ID: "mirror", URL: "https://cache.internal.example.com/repo"})
	require.NoError(t, err)
}

func TestForcedOfflineProtocolAppliesEvenWhenOnline(t *testing.T) {
	c := New()
	cfg := session.DefaultConfig()
	cfg.ForcedOfflineProtocols = []string{"http"}
	s := newSession(cfg)

	err := c.Check(s, &artifact.RemoteRepository{ID: "legacy", URL: "http://repo.example.com"})
	require.Error(t, err)
}

func TestForcedOfflineHostAppliesEvenWhenOnline(t *testing.T) {
	c := New()
	cfg := session.DefaultConfig()
	cfg.ForcedOfflineHosts = []string{"blocked.example.com"}
	s := newSession(cfg)

	err := c.Check(s, &artifact.RemoteRepository{ID: "blocked", URL: "https://blocked.example.com"})
	require.Error(t, err)
}
