// Package syncctx implements cross-process mutual exclusion over the
// artifacts and metadata a resolver or installer declares, keyed by a stable
// fingerprint of (groupId, artifactId, version) rather than by local file
// path.
package syncctx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/trackingstore"
)

// Factory creates SyncContexts rooted at a single lock directory. A Factory
// holds no per-context state; it exists so the lock directory and logger
// need not be threaded through every call site.
type Factory struct {
	lockDir string
	logger  *slog.Logger
}

// NewFactory creates a Factory that stores lock files under lockDir.
func NewFactory(lockDir string, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{lockDir: lockDir, logger: logger}
}

// Context is a held set of advisory locks, released together by Close.
// Acquisition is reentrant within a single Context instance: declaring the
// same coordinate twice (including across nested NewContext-free re-entry by
// the same caller reusing the Context) does not deadlock.
type Context struct {
	factory  *Factory
	shared   bool
	mu       sync.Mutex
	held     map[string]*heldLock
}

type heldLock struct {
	file    *os.File
	release func()
	count   int
}

// NewContext acquires advisory locks over every artifact and metadata
// coordinate supplied, blocking until all are held, and returns a Context
// whose Close releases them. shared=true allows concurrent readers to hold
// the same fingerprint simultaneously (a shared-mode context never blocks
// another shared-mode context).
func (f *Factory) NewContext(shared bool, artifacts []artifact.Coordinates, metadata []artifact.Metadata) (*Context, error) {
	c := &Context{factory: f, shared: shared, held: map[string]*heldLock{}}

	fingerprints := make([]string, 0, len(artifacts)+len(metadata))
	for _, a := range artifacts {
		fingerprints = append(fingerprints, artifactFingerprint(a))
	}
	for _, m := range metadata {
		fingerprints = append(fingerprints, metadataFingerprint(m))
	}
	// Sort so that two contexts declaring overlapping sets always acquire
	// locks in the same order, avoiding lock-ordering deadlocks.
	sort.Strings(fingerprints)

	for _, fp := range fingerprints {
		if err := c.acquire(fp); err != nil {
			c.Close()
			return nil, fmt.Errorf("syncctx: acquire %s: %w", fp, err)
		}
	}
	return c, nil
}

func (c *Context) acquire(fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hl, ok := c.held[fingerprint]; ok {
		hl.count++
		return nil
	}

	path := filepath.Join(c.factory.lockDir, fingerprint+".lock")
	f, release, err := trackingstore.LockFile(path, !c.shared)
	if err != nil {
		return err
	}
	c.held[fingerprint] = &heldLock{file: f, release: release, count: 1}
	return nil
}

// Close releases every lock held by this context. It is safe to call more
// than once and is guaranteed to run on scope exit via defer, including
// after a panic unwinds the call stack.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for fp, hl := range c.held {
		hl.release()
		delete(c.held, fp)
	}
}

func artifactFingerprint(a artifact.Coordinates) string {
	return fingerprint("artifact", a.GroupID, a.ArtifactID, a.Version)
}

func metadataFingerprint(m artifact.Metadata) string {
	return fingerprint("metadata", m.GroupID, m.ArtifactID, m.Version)
}

// fingerprint normalizes case and path separators out of the coordinate so
// that a resolver and an installer rendezvous even when their local paths
// would differ in case or separator convention.
func fingerprint(kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(strings.ReplaceAll(filepath.ToSlash(p), "\\", "/"))))
	}
	return hex.EncodeToString(h.Sum(nil))
}
