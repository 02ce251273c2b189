package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// keyPrefix Redis 鍵前綴
const keyPrefix = "meal:match:"

// Service Redis 緩存服務
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

// NewService 創建 Redis 緩存服務並測試連線
func NewService(ctx context.Context, cfg config.CacheConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}

// New 依設定建立快取；停用時回傳 nil
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "redis":
		svc, err := NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return NewManager(cfg), nil
	}
}
