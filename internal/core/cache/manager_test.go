package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/pkg/common"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled: true,
		Backend: "memory",
		MaxSize: 2,
		TTL:     time.Minute,
	}
}

func TestManager_SetGet(t *testing.T) {
	m := NewManager(testCacheConfig())
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := m.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "a")
	if err != nil || got != "1" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	stats := m.GetStats()
	if stats["hits"].(int64) != 1 || stats["misses"].(int64) != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestManager_Expiry(t *testing.T) {
	cfg := testCacheConfig()
	cfg.TTL = 10 * time.Millisecond
	m := NewManager(cfg)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", "1")
	time.Sleep(20 * time.Millisecond)

	if _, err := m.Get(ctx, "a"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestManager_EvictsLeastUsed(t *testing.T) {
	m := NewManager(testCacheConfig())
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", "1")
	_ = m.Set(ctx, "b", "2")
	_, _ = m.Get(ctx, "a")

	if err := m.Set(ctx, "c", "3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "b"); !errors.Is(err, common.ErrCacheMiss) {
		t.Errorf("expected b to be evicted")
	}
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Errorf("expected a to survive eviction: %v", err)
	}

	// 覆寫既有鍵不觸發淘汰
	if err := m.Set(ctx, "a", "updated"); err != nil {
		t.Fatalf("Set existing: %v", err)
	}
	if got, _ := m.Get(ctx, "c"); got != "3" {
		t.Errorf("overwriting should not evict c")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.CacheConfig{Enabled: false})
	if err != nil || store != nil {
		t.Fatalf("disabled cache should return nil store, got %v, %v", store, err)
	}

	store, err = New(ctx, testCacheConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*CacheManager); !ok {
		t.Errorf("expected memory backend, got %T", store)
	}
}

func TestRedisService(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	cfg := testCacheConfig()
	cfg.Backend = "redis"
	cfg.RedisAddr = addr

	store, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	key := "test:" + common.GenerateUUID()
	if _, err := store.Get(ctx, key); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	if err := store.Set(ctx, key, "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := store.Get(ctx, key); err != nil || got != "value" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}
