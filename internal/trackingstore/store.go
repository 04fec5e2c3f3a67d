// Package trackingstore implements the "touch file" persistence used to
// record fetch outcomes (timestamps, not-found/transfer-error markers)
// alongside cached artifacts and metadata. Reads and writes serialize across
// processes through an advisory file lock on the tracked path itself.
package trackingstore

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store reads, merges, and atomically rewrites newline-delimited key=value
// touch files such as "<artifactFile>.lastUpdated", "resolver-status.properties",
// and "_remote.repositories".
type Store struct {
	logger *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Read returns the key/value contents of path, or an empty map if the file
// is absent or unreadable. I/O errors fail open (§7: "more conservative,
// never less") so a caller always gets a usable, if stale, answer.
func (s *Store) Read(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("tracking store read failed, treating as empty", "path", path, "error", err)
		}
		return map[string]string{}
	}
	defer f.Close()

	unlock, err := sharedLock(f)
	if err != nil {
		s.logger.Warn("tracking store lock failed, reading unlocked", "path", path, "error", err)
	} else {
		defer unlock()
	}

	m, err := parse(f)
	if err != nil {
		s.logger.Warn("tracking store parse failed, treating as empty", "path", path, "error", err)
		return map[string]string{}
	}
	return m
}

// Update opens path for exclusive access, merges updates into the current
// contents (a nil value removes the key, a non-nil value sets it), rewrites
// the file atomically, and returns the resulting map. The parent directory
// is created if missing. Concurrent updaters, including ones in other
// processes, serialize through the exclusive lock.
func (s *Store) Update(path string, updates map[string]*string) (map[string]string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tracking store: create parent dir %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tracking store: open %s: %w", path, err)
	}
	defer f.Close()

	unlock, err := exclusiveLock(f)
	if err != nil {
		return nil, fmt.Errorf("tracking store: lock %s: %w", path, err)
	}
	defer unlock()

	current, err := parse(f)
	if err != nil {
		s.logger.Warn("tracking store parse failed during update, starting fresh", "path", path, "error", err)
		current = map[string]string{}
	}

	for k, v := range updates {
		if v == nil {
			delete(current, k)
		} else {
			current[k] = *v
		}
	}

	if err := rewrite(f, current); err != nil {
		return nil, fmt.Errorf("tracking store: rewrite %s: %w", path, err)
	}

	return current, nil
}

// Delete removes the touch file entirely. Used when, after a successful
// touch, the underlying artifact exists and the record holds no .error
// keys.
func (s *Store) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tracking store: delete %s: %w", path, err)
	}
	return nil
}

func parse(f *os.File) (map[string]string, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	m := map[string]string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := line[:idx]
		m[key] = unescape(line[idx+1:])
	}
	return m, scanner.Err()
}

func rewrite(f *os.File, m map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("#")
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString("\n")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(escape(m[k]))
		b.WriteString("\n")
	}

	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return err
	}
	return f.Sync()
}

// LockFile opens (creating if absent) and locks path, returning a release
// function that unlocks and closes the file. Exported for reuse by
// components that need the same advisory-lock primitive over arbitrary
// marker files, notably the filesystem SyncContext.
func LockFile(path string, exclusive bool) (*os.File, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("lock file: create parent dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("lock file: open %s: %w", path, err)
	}

	var unlock func()
	if exclusive {
		unlock, err = exclusiveLock(f)
	} else {
		unlock, err = sharedLock(f)
	}
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("lock file: lock %s: %w", path, err)
	}

	return f, func() {
		unlock()
		f.Close()
	}, nil
}

func escape(v string) string {
	v = strings.ReplaceAll(v, "%", "%25")
	v = strings.ReplaceAll(v, "\n", "%0A")
	v = strings.ReplaceAll(v, "=", "%3D")
	return v
}

func unescape(v string) string {
	v = strings.ReplaceAll(v, "%3D", "=")
	v = strings.ReplaceAll(v, "%0A", "\n")
	v = strings.ReplaceAll(v, "%25", "%")
	return v
}
