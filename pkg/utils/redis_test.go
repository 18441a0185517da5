package utils

import (
	"context"
	"testing"
	"time"
)

func TestAttemptHelpers_RejectBadInput(t *testing.T) {
	ctx := context.Background()
	if _, err := IncrAttempt(ctx, nil, "k", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := PeekAttempts(ctx, nil, "k"); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ResetAttempts(ctx, nil, "k"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error without addr")
	}
}

func TestRedisConfig_Defaults(t *testing.T) {
	got := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if got.PoolSize != 10 || got.IOTimeout != 2*time.Second || got.PingTimeout != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	got = RedisConfig{PoolSize: 3, IOTimeout: time.Second}.withDefaults()
	if got.PoolSize != 3 || got.IOTimeout != time.Second {
		t.Fatalf("explicit values overwritten: %+v", got)
	}
}
