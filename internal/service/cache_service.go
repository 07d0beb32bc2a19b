package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

// Cache keys for the read-mostly listings.
const (
	CacheKeyClassesAll       = "classes:all"
	CacheKeyClassesByTeacher = "classes:teacher:"
)

// CacheService is a thin JSON cache over Redis. A nil client disables
// caching entirely; every read then reports a miss.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheService constructs the service.
func NewCacheService(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheService{client: client, ttl: ttl, logger: logger}
}

// GetJSON loads and unmarshals a cached value into dest. It returns
// ErrCacheMiss when the key is absent or the cache is disabled.
func (s *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if s == nil || s.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return appErrors.ErrCacheMiss
	}
	return nil
}

// SetJSON stores a value under key with the configured TTL. Failures
// are logged and dropped.
func (s *CacheService) SetJSON(ctx context.Context, key string, value interface{}) {
	if s == nil || s.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given keys.
func (s *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
