package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"eventmis/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter throttles failed logins per key (normally the email).
type AttemptLimiter interface {
	// Blocked reports whether key has used up its failures for the window.
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

const attemptsPrefix = "eventmis:login-fail:"

type RedisLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, max: int64(max), window: window}
}

func (l *RedisLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := utils.PeekAttempts(ctx, l.rdb, attemptsKey(key))
	if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	_, err := utils.IncrAttempt(ctx, l.rdb, attemptsKey(key), l.window)
	return err
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return utils.ResetAttempts(ctx, l.rdb, attemptsKey(key))
}

func attemptsKey(key string) string {
	return attemptsPrefix + strings.ToLower(strings.TrimSpace(key))
}

type memoryAttempts struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the single-process fallback for AttemptLimiter.
type MemoryLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	seen   map[string]memoryAttempts
	clock  func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{max: max, window: window, seen: map[string]memoryAttempts{}, clock: time.Now}
}

func (l *MemoryLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.seen[attemptsKey(key)]
	if !ok || !a.resetAt.After(l.clock()) {
		return false, nil
	}
	return a.count >= l.max, nil
}

func (l *MemoryLimiter) Fail(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := attemptsKey(key)
	now := l.clock()
	a := l.seen[k]
	if !a.resetAt.After(now) {
		a = memoryAttempts{resetAt: now.Add(l.window)}
	}
	a.count++
	l.seen[k] = a
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seen, attemptsKey(key))
	return nil
}
