package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the redis used for token revocation and login throttling.
// Zero durations and sizes fall back to conservative defaults.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	DialTimeout time.Duration
	// IOTimeout bounds both reads and writes.
	IOTimeout   time.Duration
	PoolSize    int
	PingTimeout time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 3 * time.Second
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = 2 * time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 2 * time.Second
	}
	return c
}

// OpenRedis returns a client that has answered one PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	cfg = cfg.withDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.IOTimeout,
		WriteTimeout:    cfg.IOTimeout,
		PoolSize:        cfg.PoolSize,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// attemptIncrScript bumps KEYS[1] and starts its window (ARGV[1] ms) on the
// first hit. Later hits do not extend the window; a key that somehow lost its
// TTL gets one again.
var attemptIncrScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

func checkKey(rdb *redis.Client, key string) error {
	if rdb == nil {
		return errors.New("redis client is nil")
	}
	if key == "" {
		return errors.New("key is required")
	}
	return nil
}

// IncrAttempt records one failed attempt in a fixed window and returns the
// count so far.
func IncrAttempt(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	if err := checkKey(rdb, key); err != nil {
		return 0, err
	}
	if window <= 0 {
		return 0, errors.New("window must be > 0")
	}
	return attemptIncrScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64()
}

// PeekAttempts reads the count without recording anything. Absent keys are 0.
func PeekAttempts(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	if err := checkKey(rdb, key); err != nil {
		return 0, err
	}
	n, err := rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// ResetAttempts clears the count after a successful login.
func ResetAttempts(ctx context.Context, rdb *redis.Client, key string) error {
	if err := checkKey(rdb, key); err != nil {
		return err
	}
	return rdb.Del(ctx, key).Err()
}
