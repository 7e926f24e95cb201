package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisBackend struct {
	client   *redis.Client
	ttl      time.Duration
	maxWait  time.Duration
	interval time.Duration
}

// NewRedis returns a locker shared by every instance connected to client.
// A held key expires after ttl; a caller gives up after waiting maxWait.
func NewRedis(client *redis.Client, ttl, maxWait time.Duration) *KeyedLocker {
	return &KeyedLocker{backend: &redisBackend{
		client:   client,
		ttl:      ttl,
		maxWait:  maxWait,
		interval: 50 * time.Millisecond,
	}}
}

func (b *redisBackend) lock(ctx context.Context, key string) (func(), error) {
	redisKey := "crediario:lock:" + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, b.maxWait)
	defer cancel()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		ok, err := b.client.SetNX(waitCtx, redisKey, token, b.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Release with a fresh context: the caller's may already be done.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, b.client, []string{redisKey}, token).Err(); err != nil {
					slog.Warn("Failed to release lock", slog.String("key", key), slog.String("error", err.Error()))
				}
			}, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, apperrors.NewAppError(http.StatusServiceUnavailable, fmt.Sprintf("system busy, timed out waiting for lock %s", key), waitCtx.Err())
		case <-ticker.C:
		}
	}
}
