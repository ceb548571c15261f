package locks

import (
	"context"
	"sync"
	"time"

	"coursehub/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// releaseScript deletes the lock key only if we still hold it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

// WriteLock serializes read-modify-write cycles against the blob
// document across processes. Without it the last writer silently wins.
// When Redis is not configured (or unreachable) it degrades to an
// in-process mutex, which only protects a single instance; the
// degradation is logged once per acquisition.
type WriteLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration

	mu sync.Mutex // fallback when rdb is nil or down
}

func NewWriteLock(cfg *config.Config) *WriteLock {
	l := &WriteLock{
		key: cfg.BlobLockKey,
		ttl: time.Duration(cfg.BlobLockTTLSeconds) * time.Second,
	}
	if cfg.RedisAddr != "" {
		l.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return l
}

func (l *WriteLock) Close() {
	if l.rdb != nil {
		l.rdb.Close()
	}
}

// Acquire blocks until the lock is held or ctx expires. It returns a
// release func that must be called when the write cycle finishes.
func (l *WriteLock) Acquire(ctx context.Context) (func(), error) {
	l.mu.Lock()
	if l.rdb == nil {
		return l.mu.Unlock, nil
	}

	lockValue := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, lockValue, l.ttl).Result()
		if err != nil {
			// Redis down: fall back to the local mutex and warn that
			// concurrent writers on other instances may race.
			log.Warn().Err(err).Str("key", l.key).
				Msg("redis lock unavailable, falling back to in-process lock; cross-instance blob writes may race")
			return l.mu.Unlock, nil
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			l.mu.Unlock()
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	release := func() {
		defer l.mu.Unlock()
		released, err := releaseScript.Run(context.Background(), l.rdb, []string{l.key}, lockValue).Result()
		if err != nil {
			log.Error().Err(err).Str("key", l.key).Msg("failed to release blob write lock")
			return
		}
		if n, _ := released.(int64); n == 0 {
			log.Warn().Str("key", l.key).Msg("blob write lock expired before release; a concurrent write may have raced")
		}
	}
	return release, nil
}
