package syncctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

// RedisFactory is an optional SyncContext backend for installers sharing one
// local-repository mount across multiple hosts, where filesystem advisory
// locks (the default backend) do not rendezvous across machines. It mirrors
// the acquire/retry/release shape of a SET-NX-with-TTL distributed lock.
type RedisFactory struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisFactory creates a RedisFactory. ttl bounds how long a lock survives
// an installer crash before another host can proceed; it is not a
// correctness mechanism, only a liveness one.
func NewRedisFactory(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisFactory {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisFactory{client: client, ttl: ttl, logger: logger}
}

// RedisContext is the Redis-backed counterpart to Context.
type RedisContext struct {
	factory *RedisFactory
	values  map[string]string // fingerprint -> lock value, for safe release
}

// NewContext acquires a SET-NX lock per fingerprint, retrying every 20ms
// until acquired, ctx is done, or 50 retries have failed.
func (f *RedisFactory) NewContext(ctx context.Context, artifacts []artifact.Coordinates, metadata []artifact.Metadata) (*RedisContext, error) {
	rc := &RedisContext{factory: f, values: map[string]string{}}

	fingerprints := make([]string, 0, len(artifacts)+len(metadata))
	for _, a := range artifacts {
		fingerprints = append(fingerprints, artifactFingerprint(a))
	}
	for _, m := range metadata {
		fingerprints = append(fingerprints, metadataFingerprint(m))
	}
	sort.Strings(fingerprints)

	for _, fp := range fingerprints {
		value, err := rc.acquire(ctx, fp)
		if err != nil {
			rc.Close(ctx)
			return nil, fmt.Errorf("syncctx: redis acquire %s: %w", fp, err)
		}
		rc.values[fp] = value
	}
	return rc, nil
}

func (rc *RedisContext) acquire(ctx context.Context, fingerprint string) (string, error) {
	value := randomValue()
	key := "syncctx:" + fingerprint

	const maxRetries = 50
	backoff := 20 * time.Millisecond
	for attempt := 0; ; attempt++ {
		ok, err := rc.factory.client.SetNX(ctx, key, value, rc.factory.ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return value, nil
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("timed out acquiring lock %s", key)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// releaseScript deletes the key only if it still holds our value, so a
// context never releases a lock acquired by someone else after our TTL
// expired and another holder took it.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Close releases every lock this context holds.
func (rc *RedisContext) Close(ctx context.Context) {
	for fp, value := range rc.values {
		key := "syncctx:" + fp
		if err := rc.factory.client.Eval(ctx, releaseScript, []string{key}, value).Err(); err != nil {
			rc.factory.logger.Warn("syncctx: redis release failed", "key", key, "error", err)
		}
	}
}

func randomValue() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
