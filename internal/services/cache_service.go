package services

import (
	"context"
	"time"

	"carrental/pkg/cache"
)

// CacheService is the subset of the Redis cache the services use.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error

	Ping(ctx context.Context) error
}

var _ CacheService = (*cache.RedisCache)(nil)
