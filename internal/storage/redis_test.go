package storage

import (
	"context"
	"os"
	"testing"
)

// setupTestRedis connects to a local test Redis instance.
// Returns nil if no server is reachable.
func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	store, err := OpenRedis(context.Background(), RedisConfig{Host: host, DB: 9})
	if err != nil {
		return nil
	}
	return store
}

func TestRedisRoundTrip(t *testing.T) {
	store := setupTestRedis(t)
	if store == nil {
		t.Skip("No Redis connection available")
	}
	defer store.Close()

	ctx := context.Background()
	key := RouteKey("ZZZ9TEST")
	defer store.client.Del(ctx, key)

	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get before Set: ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Set(ctx, key, `{"callsign":"ZZZ9TEST"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if val != `{"callsign":"ZZZ9TEST"}` {
		t.Errorf("Get = %q", val)
	}
}

func TestRedisMGetAndScan(t *testing.T) {
	store := setupTestRedis(t)
	if store == nil {
		t.Skip("No Redis connection available")
	}
	defer store.Close()

	ctx := context.Background()
	keys := []string{RouteKey("ZZZ9AAA"), RouteKey("ZZZ9BBB")}
	defer store.client.Del(ctx, keys...)

	for _, key := range keys {
		if err := store.Set(ctx, key, "v:"+key); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	vals, err := store.MGet(ctx, append(keys, RouteKey("ZZZ9MISSING")))
	if err != nil {
		t.Fatalf("MGet failed: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("MGet returned %d values, want 3", len(vals))
	}
	if vals[0] == nil || *vals[0] != "v:"+keys[0] {
		t.Errorf("vals[0] = %v", vals[0])
	}
	if vals[2] != nil {
		t.Errorf("missing key should be nil, got %q", *vals[2])
	}

	found := make(map[string]bool)
	err = store.ScanKeys(ctx, RouteKeyPrefix+"ZZZ9*", func(key string) error {
		found[key] = true
		return nil
	})
	if err != nil {
		t.Fatalf("ScanKeys failed: %v", err)
	}
	for _, key := range keys {
		if !found[key] {
			t.Errorf("ScanKeys did not yield %s", key)
		}
	}
}

func TestMGetEmptyInput(t *testing.T) {
	// An empty MGet must not touch the store at all, so a disconnected
	// client is fine here.
	store := &RedisStore{}

	vals, err := store.MGet(context.Background(), nil)
	if err != nil {
		t.Fatalf("MGet(nil) failed: %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("MGet(nil) = %v, want empty", vals)
	}
}

func TestRouteKeyHelpers(t *testing.T) {
	if got := RouteKey("AFR136"); got != "route:AFR136" {
		t.Errorf("RouteKey = %q", got)
	}
	if got := CallsignFromKey("route:AFR136"); got != "AFR136" {
		t.Errorf("CallsignFromKey = %q", got)
	}
}

func TestWithDefaultPort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "127.0.0.1:6379"},
		{"redis.internal", "redis.internal:6379"},
		{"redis.internal:6380", "redis.internal:6380"},
	}
	for _, tt := range tests {
		if got := withDefaultPort(tt.in); got != tt.want {
			t.Errorf("withDefaultPort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
