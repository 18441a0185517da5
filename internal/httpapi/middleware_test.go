package httpapi

import (
	"testing"
	"time"
)

func TestIPRateLimiter_SweepsIdleVisitorsOncePerPeriod(t *testing.T) {
	l := NewIPRateLimiter(60)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(l.idle + time.Minute)
	l.Allow("10.0.0.2")
	if _, ok := l.visitors["10.0.0.1"]; ok {
		t.Fatalf("idle visitor should be evicted once the period has passed")
	}

	// Within the next period nothing is swept, even if a visitor goes idle.
	now = now.Add(l.idle / 2)
	l.Allow("10.0.0.3")
	if len(l.visitors) != 2 {
		t.Fatalf("expected no sweep mid-period, got %d visitors", len(l.visitors))
	}
}

func TestIPRateLimiter_EnforcesBurstPerIP(t *testing.T) {
	l := NewIPRateLimiter(2)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("other IPs have their own bucket")
	}
}
