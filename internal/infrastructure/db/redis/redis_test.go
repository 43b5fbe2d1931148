package redis

import (
	"context"
	"testing"
	"time"
)

func TestClientOptions_AppliesTimeoutAndPassword(t *testing.T) {
	opts := clientOptions(Config{Addr: "cache:6379", Password: "s3cret", DB: 2, Timeout: 750 * time.Millisecond})
	if opts.Addr != "cache:6379" || opts.Password != "s3cret" || opts.DB != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	for name, got := range map[string]time.Duration{"dial": opts.DialTimeout, "read": opts.ReadTimeout, "write": opts.WriteTimeout} {
		if got != 750*time.Millisecond {
			t.Fatalf("%s timeout = %v", name, got)
		}
	}
}

func TestClientOptions_DefaultTimeout(t *testing.T) {
	opts := clientOptions(Config{Addr: "cache:6379"})
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Fatalf("expected default timeout, got dial=%v read=%v", opts.DialTimeout, opts.ReadTimeout)
	}
}

func TestConnect_RejectsEmptyAddress(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestConnect_UnreachableServerFailsWithinTimeout(t *testing.T) {
	start := time.Now()
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected ping error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("connect took %v, timeout not applied", elapsed)
	}
}
